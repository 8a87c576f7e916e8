package adapter

import "errors"

var (
	// ErrTransient marks failures that may succeed on a later attempt:
	// transport errors, timeouts, 429 and every 5xx response.
	ErrTransient = errors.New("transient remote failure")

	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("client unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	ErrInvalidAddress = errors.New("invalid remote address")
	ErrDecodeResponse = errors.New("error decoding response body")
)

// IsTransient reports whether err is worth retrying on the next sync pass.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
