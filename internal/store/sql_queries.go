package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-flock-keeper/models"
)

const recordsTable = "records"

var recordColumns = []string{
	"id",
	"collection",
	"scope_date",
	"scope_service",
	"payload",
	"created_at",
}

// psql builds PostgreSQL statements with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// recordFilterWhere converts a filter into a WHERE clause; zero fields do
// not filter.
func recordFilterWhere(collection string, filter models.RecordFilter) sq.And {
	where := sq.And{sq.Eq{"collection": collection}}
	if filter.Date != "" {
		where = append(where, sq.Eq{"scope_date": filter.Date})
	}
	if filter.Service != "" {
		where = append(where, sq.Eq{"scope_service": filter.Service})
	}
	if len(filter.IDs) > 0 {
		where = append(where, sq.Eq{"id": filter.IDs})
	}
	return where
}

func buildSelectRecordsQuery(collection string, filter models.RecordFilter) (string, []any, error) {
	return psql.
		Select(recordColumns...).
		From(recordsTable).
		Where(recordFilterWhere(collection, filter)).
		OrderBy("created_at", "id").
		ToSql()
}

func buildDeleteRecordsQuery(collection string, filter models.RecordFilter) (string, []any, error) {
	return psql.
		Delete(recordsTable).
		Where(recordFilterWhere(collection, filter)).
		ToSql()
}

func buildDeleteRecordQuery(collection, id string) (string, []any, error) {
	return psql.
		Delete(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

// buildInsertRecordsQuery builds one multi-row INSERT. A record whose
// (collection, id) already exists is replaced.
func buildInsertRecordsQuery(collection string, records []models.RemoteRecord) (string, []any, error) {
	q := psql.Insert(recordsTable).Columns(recordColumns...)
	for _, r := range records {
		q = q.Values(r.ID, collection, r.Date, r.Service, string(r.Payload), r.CreatedAt)
	}

	return q.Suffix(`ON CONFLICT (collection, id) DO UPDATE SET
		scope_date = EXCLUDED.scope_date,
		scope_service = EXCLUDED.scope_service,
		payload = EXCLUDED.payload,
		created_at = EXCLUDED.created_at`).
		ToSql()
}
