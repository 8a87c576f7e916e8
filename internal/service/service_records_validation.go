package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/validators"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// RecordValidationService validates every request before it reaches the
// wrapped [RecordService]. Failures match [ErrValidation].
type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService() RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewRecordValidator(),
	}
}

func (v *RecordValidationService) DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	// a delete must never remove a whole collection
	if err := v.validator.Validate(ctx, filter, validators.FieldFilterNotEmpty, validators.FieldFilterDate, validators.FieldFilterIDs); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.DeleteByKey(ctx, collection, filter)
}

func (v *RecordValidationService) BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	scoped := make([]models.RemoteRecord, len(records))
	for i, rec := range records {
		if rec.Collection == "" {
			rec.Collection = collection
		}
		if rec.Collection != collection {
			return nil, fmt.Errorf("%w: %w: index %d", ErrValidation, validators.ErrCollectionMismatch, i)
		}
		scoped[i] = rec
	}

	if err := v.validator.Validate(ctx, scoped); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.BulkInsert(ctx, collection, scoped)
}

func (v *RecordValidationService) DeletePoint(ctx context.Context, collection, id string) (int64, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	if id == "" {
		return 0, fmt.Errorf("%w: %w", ErrValidation, validators.ErrEmptyRecordID)
	}

	return v.inner.DeletePoint(ctx, collection, id)
}

func (v *RecordValidationService) QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := v.validator.Validate(ctx, filter); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.QueryAll(ctx, collection, filter)
}

func (v *RecordValidationService) Ping(ctx context.Context) error {
	return v.inner.Ping(ctx)
}

func (v *RecordValidationService) Wrap(wrapped RecordService) RecordService {
	v.inner = wrapped
	return v
}

func validateCollection(collection string) error {
	if !validators.ValidCollection(collection) {
		return fmt.Errorf("%w: %w: %q", ErrValidation, validators.ErrInvalidCollection, collection)
	}
	return nil
}
