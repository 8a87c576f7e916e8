package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/service"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
)

var errorStatusMap = map[error]int{
	ErrInvalidJSON:     http.StatusBadRequest,
	ErrMissingRecordID: http.StatusBadRequest,

	service.ErrValidation: http.StatusBadRequest,

	store.ErrEmptyCollection: http.StatusBadRequest,
	store.ErrEmptyFilter:     http.StatusBadRequest,
	store.ErrRecordsNotSaved: http.StatusInternalServerError,

	store.ErrCatastrophicStorage: http.StatusServiceUnavailable,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

// statusFromError maps err to a response status. Unknown errors are 500.
// A catastrophic storage failure wins over the statement error it wraps.
func statusFromError(err error) int {
	if errors.Is(err, store.ErrCatastrophicStorage) {
		return http.StatusServiceUnavailable
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes it as a JSON error body carrying the
// request trace id. Details of 5xx failures stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)

	log := logger.FromRequest(r)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	utils.WriteError(w, message, w.Header().Get(traceIDHeader), status)
}
