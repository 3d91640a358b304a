package handlers

import (
	"net/http"

	"showstream/services/shows"
)

// HealthHandler reports dependency health. The endpoint itself never fails.
type HealthHandler struct {
	Service *shows.Service
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *shows.Service) *HealthHandler {
	return &HealthHandler{Service: service}
}

// Health probes the cache and the upstream library.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Health(r.Context()))
}
