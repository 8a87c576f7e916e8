// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

type recordRepository struct {
	*DB
}

// NewRecordRepository returns the PostgreSQL-backed [RecordRepository].
func NewRecordRepository(db *DB) RecordRepository {
	return &recordRepository{db}
}

func (r *recordRepository) DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error) {
	log := logger.FromContext(ctx)

	if collection == "" {
		return 0, ErrEmptyCollection
	}
	if filter.Date == "" && filter.Service == "" && len(filter.IDs) == 0 {
		return 0, ErrEmptyFilter
	}

	query, args, err := buildDeleteRecordsQuery(collection, filter)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.DeleteByKey").Msg("error building delete query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.DeleteByKey").Str("collection", collection).Str("pg_code", postgresError(err)).Msg("error deleting records by key")
		return 0, r.wrap(err, ErrExecutingStatement)
	}

	affected, _ := result.RowsAffected()
	log.Debug().Str("func", "recordRepository.DeleteByKey").Str("collection", collection).Str("date", filter.Date).Str("service", filter.Service).Int64("affected", affected).Msg("records deleted")

	return affected, nil
}

func (r *recordRepository) BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error) {
	log := logger.FromContext(ctx)

	if collection == "" {
		return nil, ErrEmptyCollection
	}
	if len(records) == 0 {
		return []string{}, nil
	}

	query, args, err := buildInsertRecordsQuery(collection, records)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.BulkInsert").Msg("error building insert query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	// begin transaction
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.BulkInsert").Msg("error during opening transaction")
		return nil, r.wrap(err, ErrBeginningTransaction)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.BulkInsert").Str("collection", collection).Str("pg_code", postgresError(err)).Msg("error executing bulk insert")
		return nil, r.wrap(err, ErrExecutingStatement)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected < int64(len(records)) {
		log.Error().Str("func", "recordRepository.BulkInsert").Int64("affected", rowsAffected).Int("records", len(records)).Msg("not all records were saved")
		return nil, ErrRecordsNotSaved
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "recordRepository.BulkInsert").Msg("error committing transaction")
		return nil, r.wrap(err, ErrCommitingTransaction)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	return ids, nil
}

func (r *recordRepository) DeletePoint(ctx context.Context, collection, id string) (int64, error) {
	log := logger.FromContext(ctx)

	if collection == "" {
		return 0, ErrEmptyCollection
	}

	query, args, err := buildDeleteRecordQuery(collection, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.DeletePoint").Str("collection", collection).Str("id", id).Msg("error deleting record")
		return 0, r.wrap(err, ErrExecutingStatement)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

func (r *recordRepository) QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error) {
	log := logger.FromContext(ctx)

	if collection == "" {
		return nil, ErrEmptyCollection
	}

	query, args, err := buildSelectRecordsQuery(collection, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.QueryAll").Str("collection", collection).Msg("error querying records")
		return nil, r.wrap(err, ErrExecutingQuery)
	}
	defer rows.Close()

	records := make([]models.RemoteRecord, 0)
	for rows.Next() {
		var (
			rec     models.RemoteRecord
			payload []byte
		)
		if err = rows.Scan(&rec.ID, &rec.Collection, &rec.Date, &rec.Service, &payload, &rec.CreatedAt); err != nil {
			log.Err(err).Str("func", "recordRepository.QueryAll").Msg("error scanning record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		rec.Payload = payload
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
