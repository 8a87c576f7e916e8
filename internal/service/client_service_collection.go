package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// CollectionService writes records of one collection locally and queues
// the matching remote write.
type CollectionService[T models.Record] struct {
	entityType  string
	store       *store.KeyedStore[T]
	coordinator *SyncCoordinator
	ids         IDGenerator
	assignID    func(*T, models.ID)

	logger *logger.Logger
}

// NewCollectionService creates the service for store. assignID sets the id
// of a record created without one.
func NewCollectionService[T models.Record](s *store.KeyedStore[T], coordinator *SyncCoordinator, ids IDGenerator, assignID func(*T, models.ID), log *logger.Logger) *CollectionService[T] {
	return &CollectionService[T]{
		entityType:  s.Name(),
		store:       s,
		coordinator: coordinator,
		ids:         ids,
		assignID:    assignID,
		logger:      log,
	}
}

// List returns every local record.
func (s *CollectionService[T]) List(ctx context.Context) ([]T, error) {
	return s.store.GetAll(ctx)
}

// Get returns one local record or [ErrRecordNotFound].
func (s *CollectionService[T]) Get(ctx context.Context, id models.ID) (T, error) {
	item, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return item, err
	}
	if !ok {
		return item, fmt.Errorf("%w: %s %s", ErrRecordNotFound, s.entityType, id)
	}
	return item, nil
}

// Create adds item, assigning a new id when it has none, and queues its
// remote insert.
func (s *CollectionService[T]) Create(ctx context.Context, item T) (T, error) {
	if item.RecordID().IsZero() {
		s.assignID(&item, models.NewID(s.ids.Generate()))
	}

	if err := s.store.Add(ctx, item); err != nil {
		return item, err
	}
	if _, err := s.coordinator.Enqueue(ctx, s.entityType, models.ActionCreate, item); err != nil {
		return item, err
	}

	logger.FromContext(ctx).Debug().Str("func", "CollectionService.Create").Str("entity_type", s.entityType).Str("id", item.RecordID().String()).Msg("record created")

	return item, nil
}

// Update merges the non-zero fields of partial into the record and queues
// the full merged record as a remote replacement.
func (s *CollectionService[T]) Update(ctx context.Context, id models.ID, partial T) (T, error) {
	if err := s.store.Update(ctx, id, partial); err != nil {
		var zero T
		return zero, err
	}

	merged, err := s.Get(ctx, id)
	if err != nil {
		return merged, err
	}

	if _, err = s.coordinator.Enqueue(ctx, s.entityType, models.ActionUpdate, merged); err != nil {
		return merged, err
	}

	return merged, nil
}

// Delete removes the record and queues its remote deletion.
func (s *CollectionService[T]) Delete(ctx context.Context, id models.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	_, err := s.coordinator.Enqueue(ctx, s.entityType, models.ActionDelete, models.DeletePayload{ID: id})
	return err
}
