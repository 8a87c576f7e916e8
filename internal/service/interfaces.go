package service

import (
	"context"

	"github.com/MKhiriev/go-flock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// RecordService is the system-of-record API behind the records endpoints.
type RecordService interface {
	DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error)
	BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error)
	DeletePoint(ctx context.Context, collection, id string) (int64, error)
	QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error)
	Ping(ctx context.Context) error
}

// AppInfoService reports build metadata of the running binary.
type AppInfoService interface {
	GetBuildInfo(ctx context.Context) models.BuildInfo
}

// RecordServiceWrapper defines middleware composition for RecordService.
// Implementations wrap an existing RecordService to add behavior such as
// validating.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}
