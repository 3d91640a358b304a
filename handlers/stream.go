package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"showstream/services/shows"
	"showstream/services/sonarr"
	"showstream/services/streaming"
)

// StreamHandler resolves an episode to its on-disk file and serves it with
// HTTP range support.
type StreamHandler struct {
	Shows    *shows.Service
	Provider streaming.Provider
	Tracker  *StreamTracker
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(showsSvc *shows.Service, provider streaming.Provider, tracker *StreamTracker) *StreamHandler {
	return &StreamHandler{Shows: showsSvc, Provider: provider, Tracker: tracker}
}

// StreamEpisode serves the media file for (series, season, episode).
// GET /stream/{id}/{season}/{episode} with an optional Range header.
func (h *StreamHandler) StreamEpisode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	seriesID, err1 := strconv.ParseInt(vars["id"], 10, 64)
	season, err2 := strconv.Atoi(vars["season"])
	episode, err3 := strconv.Atoi(vars["episode"])
	if err1 != nil || err2 != nil || err3 != nil {
		writeError(w, http.StatusBadRequest, "invalid stream path")
		return
	}

	detail, err := h.Shows.FindEpisodeFile(r.Context(), seriesID, season, episode)
	if err != nil {
		if !errors.Is(err, sonarr.ErrNotFound) {
			log.Printf("[stream] resolve failed series=%d s%02de%02d err=%v", seriesID, season, episode, err)
		}
		writeServiceError(w, err)
		return
	}

	resp, err := h.Provider.Stream(r.Context(), streaming.Request{
		Path:        detail.Path,
		RangeHeader: r.Header.Get("Range"),
	})
	if err != nil {
		if errors.Is(err, streaming.ErrInvalidRange) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", detail.Size))
			writeError(w, http.StatusRequestedRangeNotSatisfiable, "unsatisfiable range")
			return
		}
		log.Printf("[stream] open failed path=%s err=%v", detail.Path, err)
		writeServiceError(w, err)
		return
	}
	defer resp.Body.Close()

	rangeStart, rangeEnd := int64(0), resp.ContentLength-1
	if resp.Status == http.StatusPartialContent {
		// Content-Range was computed by the provider; recover offsets for the tracker.
		fmt.Sscanf(resp.Headers.Get("Content-Range"), "bytes %d-%d/", &rangeStart, &rangeEnd)
	}

	id, counter := h.Tracker.Start(r, detail.Path, resp.ContentLength, rangeStart, rangeEnd)
	defer h.Tracker.End(id)

	for key, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.Status)

	written, err := io.Copy(&countingWriter{ResponseWriter: w, bytes: counter}, resp.Body)
	if err != nil {
		// Almost always the client seeking or disconnecting mid-stream.
		log.Printf("[stream] aborted path=%s written=%d err=%v", detail.Path, written, err)
	}
}

// ListStreams returns the currently active streams.
// GET /streams
func (h *StreamHandler) ListStreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   h.Tracker.Count(),
		"streams": h.Tracker.Active(),
	})
}
