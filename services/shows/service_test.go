package shows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showstream/services/cache"
	"showstream/services/sonarr"
)

// memStore is a minimal in-memory cache.Store for service tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	dead    bool
}

func newMemStore() *memStore { return &memStore{entries: make(map[string][]byte)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return nil, errors.New("store down")
	}
	raw, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return raw, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return errors.New("store down")
	}
	s.entries[key] = value
	return nil
}

func (s *memStore) FlushAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return errors.New("store down")
	}
	s.entries = make(map[string][]byte)
	return nil
}

func (s *memStore) Ping(_ context.Context) error {
	if s.dead {
		return errors.New("store down")
	}
	return nil
}

// fakeLibrary is a scripted Library with call counters.
type fakeLibrary struct {
	mu            sync.Mutex
	series        []sonarr.Series
	episodes      map[int64][]sonarr.Episode
	files         map[int64][]sonarr.EpisodeFile
	statusErr     error
	listCalls     int
	episodesCalls int
}

func (f *fakeLibrary) ListSeries(context.Context) ([]sonarr.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.series, nil
}

func (f *fakeLibrary) GetSeries(_ context.Context, id int64) (*sonarr.Series, error) {
	for i := range f.series {
		if f.series[i].ID == id {
			return &f.series[i], nil
		}
	}
	return nil, fmt.Errorf("series %d: %w", id, sonarr.ErrNotFound)
}

func (f *fakeLibrary) ListEpisodes(_ context.Context, seriesID int64) ([]sonarr.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodesCalls++
	eps, ok := f.episodes[seriesID]
	if !ok {
		return nil, fmt.Errorf("episodes for series %d: %w", seriesID, sonarr.ErrNotFound)
	}
	return eps, nil
}

func (f *fakeLibrary) ListEpisodeFiles(_ context.Context, seriesID int64) ([]sonarr.EpisodeFile, error) {
	files, ok := f.files[seriesID]
	if !ok {
		return nil, fmt.Errorf("episode files for series %d: %w", seriesID, sonarr.ErrNotFound)
	}
	return files, nil
}

func (f *fakeLibrary) SystemStatus(context.Context) (*sonarr.SystemStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &sonarr.SystemStatus{AppName: "Sonarr"}, nil
}

func manySeries(n int) []sonarr.Series {
	series := make([]sonarr.Series, n)
	for i := range series {
		series[i] = sonarr.Series{ID: int64(i + 1), Title: fmt.Sprintf("Show %02d", i+1)}
	}
	return series
}

func newTestService(lib *fakeLibrary, store cache.Store) *Service {
	return NewService(lib, cache.New(store), 30*time.Minute)
}

func TestListShowsPagination(t *testing.T) {
	lib := &fakeLibrary{series: manySeries(45)}
	svc := newTestService(lib, newMemStore())
	ctx := context.Background()

	tests := []struct {
		page, pageSize int
		wantLen        int
		wantPages      int
		wantFirstID    int64
	}{
		{1, 20, 20, 3, 1},
		{2, 20, 20, 3, 21},
		{3, 20, 5, 3, 41},
		{4, 20, 0, 3, 0},
		{99, 20, 0, 3, 0},
		{1, 100, 45, 1, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d size=%d", tt.page, tt.pageSize), func(t *testing.T) {
			got, err := svc.ListShows(ctx, tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Equal(t, 45, got.Total)
			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.Len(t, got.Results, tt.wantLen)
			assert.NotNil(t, got.Results)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirstID, got.Results[0].ID)
			}
		})
	}
}

func TestListShowsUsesCache(t *testing.T) {
	lib := &fakeLibrary{series: manySeries(5)}
	svc := newTestService(lib, newMemStore())
	ctx := context.Background()

	_, err := svc.ListShows(ctx, 1, 20)
	require.NoError(t, err)
	_, err = svc.ListShows(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.listCalls, "second page read must come from cache")
}

func TestListShowsSurvivesDeadCache(t *testing.T) {
	lib := &fakeLibrary{series: manySeries(3)}
	store := newMemStore()
	store.dead = true
	svc := newTestService(lib, store)

	got, err := svc.ListShows(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
}

func TestGetShowNotFound(t *testing.T) {
	svc := newTestService(&fakeLibrary{}, newMemStore())

	_, err := svc.GetShow(context.Background(), 404)
	assert.ErrorIs(t, err, sonarr.ErrNotFound)
}

func TestListEpisodesAssembles(t *testing.T) {
	lib := &fakeLibrary{
		episodes: map[int64][]sonarr.Episode{7: {
			{SeasonNumber: 1, EpisodeNumber: 2, HasFile: true, EpisodeFileID: 5},
			{SeasonNumber: 1, EpisodeNumber: 1, HasFile: true, EpisodeFileID: 6},
		}},
		files: map[int64][]sonarr.EpisodeFile{7: {
			{ID: 5, Path: "/tv/s01e02.mkv"},
			{ID: 6, Path: "/tv/s01e01.mkv"},
		}},
	}
	svc := newTestService(lib, newMemStore())

	details, err := svc.ListEpisodes(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, 1, details[0].EpisodeNumber)
	assert.Equal(t, 2, details[1].EpisodeNumber)
}

func TestListEpisodesUnknownSeries(t *testing.T) {
	svc := newTestService(&fakeLibrary{}, newMemStore())

	_, err := svc.ListEpisodes(context.Background(), 999)
	assert.ErrorIs(t, err, sonarr.ErrNotFound)
}

func TestFindEpisodeFile(t *testing.T) {
	lib := &fakeLibrary{
		episodes: map[int64][]sonarr.Episode{7: {
			{SeasonNumber: 2, EpisodeNumber: 3, HasFile: true, EpisodeFileID: 5},
		}},
		files: map[int64][]sonarr.EpisodeFile{7: {{ID: 5, Path: "/tv/s02e03.mkv"}}},
	}
	svc := newTestService(lib, newMemStore())
	ctx := context.Background()

	detail, err := svc.FindEpisodeFile(ctx, 7, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "/tv/s02e03.mkv", detail.Path)

	_, err = svc.FindEpisodeFile(ctx, 7, 2, 4)
	assert.ErrorIs(t, err, sonarr.ErrNotFound)
}

func TestClearCacheForcesRefetch(t *testing.T) {
	lib := &fakeLibrary{series: manySeries(2)}
	svc := newTestService(lib, newMemStore())
	ctx := context.Background()

	_, err := svc.ListShows(ctx, 1, 20)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCache(ctx))
	_, err = svc.ListShows(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, lib.listCalls)
}

func TestHealth(t *testing.T) {
	lib := &fakeLibrary{}
	store := newMemStore()
	svc := newTestService(lib, store)
	ctx := context.Background()

	status := svc.Health(ctx)
	assert.Equal(t, "healthy", status.Cache)
	assert.Equal(t, "healthy", status.Sonarr)

	store.dead = true
	lib.statusErr = errors.New("connection refused")
	status = svc.Health(ctx)
	assert.Equal(t, "unhealthy", status.Cache)
	assert.Equal(t, "unhealthy", status.Sonarr)
}
