package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"showstream/services/shows"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ShowsHandler serves the series browsing endpoints.
type ShowsHandler struct {
	Service *shows.Service
}

// NewShowsHandler creates a new ShowsHandler.
func NewShowsHandler(service *shows.Service) *ShowsHandler {
	return &ShowsHandler{Service: service}
}

// ListShows returns a page of the series library.
// GET /shows?page=&page_size=
func (h *ShowsHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	pageSize := parsePositiveInt(r.URL.Query().Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result, err := h.Service.ListShows(r.Context(), page, pageSize)
	if err != nil {
		log.Printf("[shows] list failed page=%d err=%v", page, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetShow returns a single series document.
// GET /show/{id}
func (h *ShowsHandler) GetShow(w http.ResponseWriter, r *http.Request) {
	id, ok := seriesID(w, r)
	if !ok {
		return
	}

	series, err := h.Service.GetShow(r.Context(), id)
	if err != nil {
		log.Printf("[shows] get failed id=%d err=%v", id, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// ListEpisodes returns the ordered episode details for a series.
// GET /show/{id}/episodes
func (h *ShowsHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	id, ok := seriesID(w, r)
	if !ok {
		return
	}

	episodes, err := h.Service.ListEpisodes(r.Context(), id)
	if err != nil {
		log.Printf("[shows] episodes failed id=%d err=%v", id, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func seriesID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid series id")
		return 0, false
	}
	return id, true
}

func parsePositiveInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
