// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// filterFromQuery reads ?date=&service=&id=&id= into a filter.
func filterFromQuery(r *http.Request) models.RecordFilter {
	q := r.URL.Query()
	return models.RecordFilter{
		Date:    q.Get("date"),
		Service: q.Get("service"),
		IDs:     q["id"],
	}
}

func (h *Handler) queryRecords(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	records, err := h.services.RecordService.QueryAll(r.Context(), collection, filterFromQuery(r))
	if err != nil {
		writeError(w, r, "Handler.queryRecords", err)
		return
	}

	utils.WriteJSON(w, models.RecordsResponse{Records: records, Length: len(records)}, http.StatusOK)
}

func (h *Handler) bulkInsertRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	var records []models.RemoteRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		log.Err(err).Str("func", "Handler.bulkInsertRecords").Msg("Invalid JSON was passed")
		writeError(w, r, "Handler.bulkInsertRecords", ErrInvalidJSON)
		return
	}

	ids, err := h.services.RecordService.BulkInsert(r.Context(), collection, records)
	if err != nil {
		writeError(w, r, "Handler.bulkInsertRecords", err)
		return
	}

	principal, _ := utils.GetPrincipalFromContext(r.Context())
	log.Info().Str("func", "Handler.bulkInsertRecords").Str("collection", collection).Str("principal", principal).Int("inserted", len(ids)).Msg("records inserted")

	utils.WriteJSON(w, models.BulkInsertResponse{InsertedIDs: ids}, http.StatusCreated)
}

func (h *Handler) deleteRecordsByKey(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	affected, err := h.services.RecordService.DeleteByKey(r.Context(), collection, filterFromQuery(r))
	if err != nil {
		writeError(w, r, "Handler.deleteRecordsByKey", err)
		return
	}

	utils.WriteJSON(w, models.DeleteResponse{Affected: affected}, http.StatusOK)
}

// deleteRecord is idempotent: deleting an absent record answers 200 with
// zero affected rows.
func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, r, "Handler.deleteRecord", ErrMissingRecordID)
		return
	}

	affected, err := h.services.RecordService.DeletePoint(r.Context(), collection, id)
	if err != nil {
		writeError(w, r, "Handler.deleteRecord", err)
		return
	}

	utils.WriteJSON(w, models.DeleteResponse{Affected: affected}, http.StatusOK)
}
