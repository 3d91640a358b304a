// Package shows composes the Sonarr client and the metadata cache into the
// gateway's browse, stream-resolution and health operations.
package shows

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"

	"showstream/models"
	"showstream/services/cache"
	"showstream/services/sonarr"
)

// Cache key namespaces. One key per upstream collection; assembled episode
// details are always computed fresh from the cached collections.
const (
	keySeriesAll    = "sonarr:series"
	keySeriesByID   = "sonarr:series:"
	keyEpisodes     = "sonarr:episodes:"
	keyEpisodeFiles = "sonarr:episodefiles:"
)

const healthProbeTimeout = 3 * time.Second

// Library is the upstream surface the service needs. *sonarr.Client
// implements it.
type Library interface {
	ListSeries(ctx context.Context) ([]sonarr.Series, error)
	GetSeries(ctx context.Context, id int64) (*sonarr.Series, error)
	ListEpisodes(ctx context.Context, seriesID int64) ([]sonarr.Episode, error)
	ListEpisodeFiles(ctx context.Context, seriesID int64) ([]sonarr.EpisodeFile, error)
	SystemStatus(ctx context.Context) (*sonarr.SystemStatus, error)
}

// Service answers the gateway's metadata requests from cache, falling back to
// the upstream library on misses.
type Service struct {
	library Library
	cache   *cache.Service
	ttl     time.Duration
}

// NewService creates a shows service. ttl bounds how stale cached upstream
// collections may get.
func NewService(library Library, cacheSvc *cache.Service, ttl time.Duration) *Service {
	return &Service{library: library, cache: cacheSvc, ttl: ttl}
}

// ListShows returns one page of the series library. Pages are 1-based; a page
// past the end yields an empty result list, not an error.
func (s *Service) ListShows(ctx context.Context, page, pageSize int) (*models.ShowsPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var series []sonarr.Series
	err := s.cache.GetOrFetch(ctx, keySeriesAll, s.ttl, func(ctx context.Context) (any, error) {
		return s.library.ListSeries(ctx)
	}, &series)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}

	total := len(series)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	results := series[start:end]
	if results == nil {
		results = []sonarr.Series{}
	}
	return &models.ShowsPage{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Results:    results,
	}, nil
}

// GetShow returns a single series by ID. Propagates sonarr.ErrNotFound.
func (s *Service) GetShow(ctx context.Context, id int64) (*sonarr.Series, error) {
	var series sonarr.Series
	key := keySeriesByID + strconv.FormatInt(id, 10)
	err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) (any, error) {
		return s.library.GetSeries(ctx, id)
	}, &series)
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ListEpisodes returns the assembled, ordered episode details for a series.
// The episode and episode-file collections are fetched concurrently; both
// must succeed.
func (s *Service) ListEpisodes(ctx context.Context, seriesID int64) ([]models.EpisodeDetail, error) {
	var (
		episodes []sonarr.Episode
		files    []sonarr.EpisodeFile
	)
	id := strconv.FormatInt(seriesID, 10)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.cache.GetOrFetch(gctx, keyEpisodes+id, s.ttl, func(ctx context.Context) (any, error) {
			return s.library.ListEpisodes(ctx, seriesID)
		}, &episodes)
	})
	g.Go(func() error {
		return s.cache.GetOrFetch(gctx, keyEpisodeFiles+id, s.ttl, func(ctx context.Context) (any, error) {
			return s.library.ListEpisodeFiles(ctx, seriesID)
		}, &files)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return AssembleEpisodes(episodes, files), nil
}

// FindEpisodeFile resolves the on-disk path for (series, season, episode).
// Returns sonarr.ErrNotFound when no matching episode with a file exists.
func (s *Service) FindEpisodeFile(ctx context.Context, seriesID int64, season, episode int) (*models.EpisodeDetail, error) {
	details, err := s.ListEpisodes(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if details[i].SeasonNumber == season && details[i].EpisodeNumber == episode {
			return &details[i], nil
		}
	}
	return nil, fmt.Errorf("series %d s%02de%02d: %w", seriesID, season, episode, sonarr.ErrNotFound)
}

// ClearCache drops every cached upstream collection.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Health probes the cache store and the upstream library concurrently with a
// short timeout. It never fails; probe outcomes come back as strings.
func (s *Service) Health(ctx context.Context) models.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	status := models.HealthStatus{Cache: "healthy", Sonarr: "healthy"}

	var wg conc.WaitGroup
	wg.Go(func() {
		if !s.cache.Ping(ctx) {
			status.Cache = "unhealthy"
		}
	})
	wg.Go(func() {
		if _, err := s.library.SystemStatus(ctx); err != nil {
			status.Sonarr = "unhealthy"
		}
	})
	wg.Wait()

	return status
}
