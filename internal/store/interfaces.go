package store

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-flock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorClassificator maps a driver error to an [ErrorClassification].
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// CollectionRepository persists whole collections as opaque JSON documents
// keyed by collection name. Failures of the medium itself are wrapped with
// [ErrCatastrophicStorage].
type CollectionRepository interface {
	// Load returns the persisted payload and true, or false when the
	// collection was never written.
	Load(ctx context.Context, name string) (json.RawMessage, bool, error)
	// Save replaces the persisted payload of the collection.
	Save(ctx context.Context, name string, payload json.RawMessage) error
}

// OperationQueue is the durable FIFO log of pending operations.
type OperationQueue interface {
	Enqueue(ctx context.Context, entityType string, action models.Action, payload json.RawMessage) (models.PendingOperation, error)
	ListPending(ctx context.Context) ([]models.PendingOperation, error)
	Clear(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// RecordRepository is the system-of-record persistence used by the server.
type RecordRepository interface {
	// DeleteByKey removes every record of collection matching filter and
	// returns the number of removed rows.
	DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error)
	// BulkInsert stores records in one transaction and returns their ids.
	// A record whose id already exists is replaced.
	BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error)
	// DeletePoint removes one record and returns the number of removed rows.
	DeletePoint(ctx context.Context, collection, id string) (int64, error)
	// QueryAll returns every record of collection matching filter, oldest first.
	QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error)
	// Ping checks database reachability.
	Ping(ctx context.Context) error
}
