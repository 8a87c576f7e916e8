package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidCollection   = errors.New("invalid collection name")
	ErrCollectionMismatch  = errors.New("record collection does not match the request")
	ErrEmptyRecordID       = errors.New("record id is required")
	ErrInvalidPayload      = errors.New("record payload must be a JSON object")
	ErrMissingScope        = errors.New("attendance record requires date and service")
	ErrInvalidScopeDate    = errors.New("scope date must be YYYY-MM-DD")
	ErrEmptyRecords        = errors.New("records list cannot be empty")
	ErrDuplicateRecordID   = errors.New("duplicate record id in batch")
	ErrEmptyFilter         = errors.New("delete filter cannot be empty")
	ErrTooManyFilterValues = errors.New("too many ids in filter")
)
