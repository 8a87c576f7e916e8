package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL wraps an existing *sql.DB for tests.
func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var recordRowColumns = []string{"id", "collection", "scope_date", "scope_service", "payload", "created_at"}

func attendanceRecord(id, member string) models.RemoteRecord {
	return models.RemoteRecord{
		ID:         id,
		Collection: models.CollectionAttendance,
		Date:       "2025-04-20",
		Service:    "Sunday Morning Service",
		Payload:    json.RawMessage(`{"member_id":"` + member + `","status":"present"}`),
		CreatedAt:  time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC),
	}
}

// ── DeleteByKey ───────────────────────────────────────────────────────────────

func TestRecordRepository_DeleteByKey_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectExec(`DELETE FROM records WHERE \(collection = \$1 AND scope_date = \$2 AND scope_service = \$3\)`).
		WithArgs(models.CollectionAttendance, "2025-04-20", "Sunday Morning Service").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.DeleteByKey(testContext(), models.CollectionAttendance, models.RecordFilter{
		Date:    "2025-04-20",
		Service: "Sunday Morning Service",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_DeleteByKey_RejectsEmptyFilter(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	_, err := repo.DeleteByKey(testContext(), models.CollectionAttendance, models.RecordFilter{})

	assert.ErrorIs(t, err, ErrEmptyFilter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_DeleteByKey_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectExec(`DELETE FROM records`).WillReturnError(errors.New("connection reset"))

	_, err := repo.DeleteByKey(testContext(), models.CollectionAttendance, models.RecordFilter{Date: "2025-04-20"})

	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_DeleteByKey_DiskFullIsCatastrophic(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectExec(`DELETE FROM records`).WillReturnError(&pgconn.PgError{Code: "53100"})

	_, err := repo.DeleteByKey(testContext(), models.CollectionAttendance, models.RecordFilter{Date: "2025-04-20"})

	assert.ErrorIs(t, err, ErrCatastrophicStorage)
}

// ── BulkInsert ────────────────────────────────────────────────────────────────

func TestRecordRepository_BulkInsert_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	records := []models.RemoteRecord{attendanceRecord("a1", "1"), attendanceRecord("a2", "2")}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records \(id,collection,scope_date,scope_service,payload,created_at\) VALUES .* ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ids, err := repo.BulkInsert(testContext(), models.CollectionAttendance, records)

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_BulkInsert_Empty(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	ids, err := repo.BulkInsert(testContext(), models.CollectionAttendance, nil)

	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_BulkInsert_PartialWriteRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := repo.BulkInsert(testContext(), models.CollectionAttendance,
		[]models.RemoteRecord{attendanceRecord("a1", "1"), attendanceRecord("a2", "2")})

	assert.ErrorIs(t, err, ErrRecordsNotSaved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_BulkInsert_BeginError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := repo.BulkInsert(testContext(), models.CollectionAttendance, []models.RemoteRecord{attendanceRecord("a1", "1")})

	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestRecordRepository_BulkInsert_CommitError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := repo.BulkInsert(testContext(), models.CollectionAttendance, []models.RemoteRecord{attendanceRecord("a1", "1")})

	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

// ── DeletePoint ───────────────────────────────────────────────────────────────

func TestRecordRepository_DeletePoint(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectExec(`DELETE FROM records WHERE collection = \$1 AND id = \$2`).
		WithArgs(models.CollectionMembers, "7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.DeletePoint(testContext(), models.CollectionMembers, "7")

	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── QueryAll ──────────────────────────────────────────────────────────────────

func TestRecordRepository_QueryAll_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	rec := attendanceRecord("a1", "1")
	rows := sqlmock.NewRows(recordRowColumns).
		AddRow(rec.ID, rec.Collection, rec.Date, rec.Service, []byte(rec.Payload), rec.CreatedAt)

	mock.ExpectQuery(`SELECT id, collection, scope_date, scope_service, payload, created_at FROM records WHERE`).
		WithArgs(models.CollectionAttendance, "2025-04-20", "Sunday Morning Service").
		WillReturnRows(rows)

	got, err := repo.QueryAll(testContext(), models.CollectionAttendance, models.ForKey(models.ServiceKey{
		Date:        "2025-04-20",
		ServiceName: "Sunday Morning Service",
	}))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_QueryAll_EmptyResultIsNotNil(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	mock.ExpectQuery(`SELECT .* FROM records`).WillReturnRows(sqlmock.NewRows(recordRowColumns))

	got, err := repo.QueryAll(testContext(), models.CollectionMembers, models.RecordFilter{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecordRepository_QueryAll_ScanError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))

	rows := sqlmock.NewRows(recordRowColumns).AddRow("a1", "attendance", "", "", []byte(`{}`), "not a time")
	mock.ExpectQuery(`SELECT .* FROM records`).WillReturnRows(rows)

	_, err := repo.QueryAll(testContext(), models.CollectionAttendance, models.RecordFilter{})

	assert.ErrorIs(t, err, ErrScanningRows)
}

func TestRecordRepository_RejectsEmptyCollection(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db))
	ctx := testContext()

	_, err := repo.QueryAll(ctx, "", models.RecordFilter{})
	assert.ErrorIs(t, err, ErrEmptyCollection)

	_, err = repo.BulkInsert(ctx, "", nil)
	assert.ErrorIs(t, err, ErrEmptyCollection)

	_, err = repo.DeletePoint(ctx, "", "1")
	assert.ErrorIs(t, err, ErrEmptyCollection)
}
