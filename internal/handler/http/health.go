package http

import (
	"net/http"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
)

type healthResponse struct {
	Status string `json:"status"`
}

// health reports whether the records database answers. Clients probe it to
// decide whether they are online.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.services.RecordService.Ping(r.Context()); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "Handler.health").Msg("records database is unreachable")
		utils.WriteJSON(w, healthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, healthResponse{Status: "ok"}, http.StatusOK)
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.AppInfoService.GetBuildInfo(r.Context()), http.StatusOK)
}
