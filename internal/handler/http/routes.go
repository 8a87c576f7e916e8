package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, withGZip, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version", h.version)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/api/records/{collection}", func(r chi.Router) {
			r.Get("/", h.queryRecords)
			r.Post("/", h.bulkInsertRecords)
			r.Delete("/", h.deleteRecordsByKey)
			r.Delete("/{id}", h.deleteRecord)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod)

	return router
}
