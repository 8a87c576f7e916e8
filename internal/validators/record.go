package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/MKhiriev/go-flock-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldCollection targets the collection name of a record.
	FieldCollection = "collection"

	// FieldRecordID targets the identifier of a record.
	FieldRecordID = "id"

	// FieldPayload targets the JSON document of a record.
	FieldPayload = "payload"

	// FieldScope targets the (date, service) scope of key-scoped records.
	FieldScope = "scope"

	// FieldRecords targets every record of a batch.
	FieldRecords = "records"

	// FieldUniqueIDs requires the ids of a batch to be distinct.
	FieldUniqueIDs = "unique_ids"

	// FieldFilterNotEmpty requires a filter to narrow the collection, so
	// that a delete never removes a whole collection.
	FieldFilterNotEmpty = "filter_not_empty"

	// FieldFilterDate targets the date of a filter.
	FieldFilterDate = "filter_date"

	// FieldFilterIDs limits the number of ids in a filter.
	FieldFilterIDs = "filter_ids"
)

// MaxFilterIDs is the largest id list a filter may carry.
const MaxFilterIDs = 1000

var collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// ValidCollection reports whether name can be used as a collection name.
func ValidCollection(name string) bool {
	return collectionPattern.MatchString(name)
}

// RecordValidator implements [Validator] for the system-of-record models:
// RemoteRecord, record batches and RecordFilter.
type RecordValidator struct {
}

// NewRecordValidator returns a [RecordValidator] as a [Validator].
func NewRecordValidator() Validator {
	return &RecordValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted. When fields is empty a default set is checked.
func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RemoteRecord:
		return v.validateRecord(ctx, value, fields...)
	case *models.RemoteRecord:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateRecord(ctx, *value, fields...)
	case []models.RemoteRecord:
		return v.validateBatch(ctx, value, fields...)
	case models.RecordFilter:
		return v.validateFilter(ctx, value, fields...)
	case *models.RecordFilter:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateFilter(ctx, *value, fields...)
	}

	return ErrUnsupportedType
}

func (v *RecordValidator) validateRecord(ctx context.Context, record models.RemoteRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldRecordID, FieldPayload, FieldScope}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !ValidCollection(record.Collection) {
				return ErrInvalidCollection
			}
		case FieldRecordID:
			if record.ID == "" {
				return ErrEmptyRecordID
			}
		case FieldPayload:
			trimmed := bytes.TrimSpace(record.Payload)
			if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
				return ErrInvalidPayload
			}
		case FieldScope:
			if record.Collection != models.CollectionAttendance {
				continue
			}
			if record.Date == "" || record.Service == "" {
				return ErrMissingScope
			}
			if _, err := time.Parse(models.ServiceDateLayout, record.Date); err != nil {
				return ErrInvalidScopeDate
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateBatch checks a bulk insert. Record ids are optional in a batch;
// the system of record assigns missing ones.
func (v *RecordValidator) validateBatch(ctx context.Context, records []models.RemoteRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRecords, FieldUniqueIDs}
	}

	for _, f := range fields {
		switch f {
		case FieldRecords:
			if len(records) == 0 {
				return ErrEmptyRecords
			}
			for i, record := range records {
				if err := v.validateRecord(ctx, record, FieldCollection, FieldPayload, FieldScope); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
			}
		case FieldUniqueIDs:
			seen := make(map[string]struct{}, len(records))
			for i, record := range records {
				if record.ID == "" {
					continue
				}
				if _, dup := seen[record.ID]; dup {
					return fmt.Errorf("validation error at index %d: %w: %q", i, ErrDuplicateRecordID, record.ID)
				}
				seen[record.ID] = struct{}{}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateFilter(ctx context.Context, filter models.RecordFilter, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldFilterDate, FieldFilterIDs}
	}

	for _, f := range fields {
		switch f {
		case FieldFilterNotEmpty:
			if filter.Date == "" && filter.Service == "" && len(filter.IDs) == 0 {
				return ErrEmptyFilter
			}
		case FieldFilterDate:
			if filter.Date == "" {
				continue
			}
			if _, err := time.Parse(models.ServiceDateLayout, filter.Date); err != nil {
				return ErrInvalidScopeDate
			}
		case FieldFilterIDs:
			if len(filter.IDs) > MaxFilterIDs {
				return ErrTooManyFilterValues
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
