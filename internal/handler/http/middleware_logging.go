package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

// withLogging writes one access log line per request. Failed requests are
// logged at warn level together with the response body.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		event := log.Info()
		if lw.status >= http.StatusBadRequest {
			event = log.Warn().Bytes("body", lw.body)
		}

		event.
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}
