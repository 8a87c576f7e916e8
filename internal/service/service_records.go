package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

type recordService struct {
	repo store.RecordRepository
	ids  IDGenerator
	now  func() time.Time

	logger *logger.Logger
}

// NewRecordService creates the system-of-record service over repo.
func NewRecordService(repo store.RecordRepository, ids IDGenerator, logger *logger.Logger) RecordService {
	return &recordService{
		repo:   repo,
		ids:    ids,
		now:    time.Now,
		logger: logger,
	}
}

func (s *recordService) DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error) {
	return s.repo.DeleteByKey(ctx, collection, filter)
}

// BulkInsert assigns an id to every record without one and stamps records
// without a creation time, then stores the batch in one transaction.
func (s *recordService) BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error) {
	now := s.now().UTC()

	prepared := make([]models.RemoteRecord, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			rec.ID = s.ids.Generate()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.Collection = collection
		prepared[i] = rec
	}

	ids, err := s.repo.BulkInsert(ctx, collection, prepared)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug().Str("func", "recordService.BulkInsert").Str("collection", collection).Int("records", len(ids)).Msg("records stored")

	return ids, nil
}

func (s *recordService) DeletePoint(ctx context.Context, collection, id string) (int64, error) {
	return s.repo.DeletePoint(ctx, collection, id)
}

func (s *recordService) QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error) {
	return s.repo.QueryAll(ctx, collection, filter)
}

func (s *recordService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
