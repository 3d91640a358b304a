package handlers

import (
	"log"
	"net/http"

	"showstream/services/shows"
)

// CacheHandler serves cache administration endpoints.
type CacheHandler struct {
	Service *shows.Service
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(service *shows.Service) *CacheHandler {
	return &CacheHandler{Service: service}
}

// ClearCache drops all cached upstream metadata.
// GET /cache/clear
func (h *CacheHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearCache(r.Context()); err != nil {
		log.Printf("[cache] clear failed: %v", err)
		writeServiceError(w, err)
		return
	}
	log.Printf("[cache] cleared")
	writeJSON(w, http.StatusOK, map[string]string{"message": "cache cleared"})
}
