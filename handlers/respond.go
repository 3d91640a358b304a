package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"showstream/services/cache"
	"showstream/services/sonarr"
	"showstream/services/streaming"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var upstream *sonarr.UpstreamError
	switch {
	case errors.Is(err, sonarr.ErrNotFound), errors.Is(err, streaming.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, sonarr.ErrUnreachable):
		writeError(w, http.StatusBadGateway, "upstream unreachable")
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, "upstream error")
	case errors.Is(err, cache.ErrUnavailable):
		writeError(w, http.StatusInternalServerError, "cache unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
