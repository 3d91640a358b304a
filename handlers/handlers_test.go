package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"showstream/services/cache"
	"showstream/services/shows"
	"showstream/services/sonarr"
	"showstream/services/streaming"
)

// mapStore is an in-memory cache.Store.
type mapStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapStore() *mapStore { return &mapStore{entries: make(map[string][]byte)} }

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return raw, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *mapStore) FlushAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	return nil
}

func (s *mapStore) Ping(context.Context) error { return nil }

// stubLibrary is a scripted shows.Library.
type stubLibrary struct {
	series   []sonarr.Series
	episodes map[int64][]sonarr.Episode
	files    map[int64][]sonarr.EpisodeFile
}

func (s *stubLibrary) ListSeries(context.Context) ([]sonarr.Series, error) {
	return s.series, nil
}

func (s *stubLibrary) GetSeries(_ context.Context, id int64) (*sonarr.Series, error) {
	for i := range s.series {
		if s.series[i].ID == id {
			return &s.series[i], nil
		}
	}
	return nil, fmt.Errorf("series %d: %w", id, sonarr.ErrNotFound)
}

func (s *stubLibrary) ListEpisodes(_ context.Context, seriesID int64) ([]sonarr.Episode, error) {
	eps, ok := s.episodes[seriesID]
	if !ok {
		return nil, fmt.Errorf("episodes for series %d: %w", seriesID, sonarr.ErrNotFound)
	}
	return eps, nil
}

func (s *stubLibrary) ListEpisodeFiles(_ context.Context, seriesID int64) ([]sonarr.EpisodeFile, error) {
	files, ok := s.files[seriesID]
	if !ok {
		return nil, fmt.Errorf("episode files for series %d: %w", seriesID, sonarr.ErrNotFound)
	}
	return files, nil
}

func (s *stubLibrary) SystemStatus(context.Context) (*sonarr.SystemStatus, error) {
	return &sonarr.SystemStatus{AppName: "Sonarr"}, nil
}

func newShowsService(lib shows.Library) *shows.Service {
	return shows.NewService(lib, cache.New(newMapStore()), time.Minute)
}

// newGatewayRouter wires handlers into a router the way main does, so tests
// exercise mux path variables.
func newGatewayRouter(lib shows.Library, fs afero.Fs) *mux.Router {
	svc := newShowsService(lib)
	tracker := NewStreamTracker()
	showsH := NewShowsHandler(svc)
	streamH := NewStreamHandler(svc, streaming.NewFileProviderWithFs(fs), tracker)
	cacheH := NewCacheHandler(svc)
	healthH := NewHealthHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/shows", showsH.ListShows).Methods(http.MethodGet)
	r.HandleFunc("/show/{id}", showsH.GetShow).Methods(http.MethodGet)
	r.HandleFunc("/show/{id}/episodes", showsH.ListEpisodes).Methods(http.MethodGet)
	r.HandleFunc("/stream/{id}/{season}/{episode}", streamH.StreamEpisode).Methods(http.MethodGet)
	r.HandleFunc("/streams", streamH.ListStreams).Methods(http.MethodGet)
	r.HandleFunc("/cache/clear", cacheH.ClearCache).Methods(http.MethodGet)
	r.HandleFunc("/health", healthH.Health).Methods(http.MethodGet)
	return r
}

func serve(t *testing.T, router *mux.Router, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
