// Package cache implements the cache-aside layer in front of the upstream
// metadata API. The backing store is pluggable; production uses Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrCacheMiss is returned by a Store when the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("cache unavailable")
)

// Store is the backing key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Service provides TTL-bound cache-aside reads over a Store. Concurrent cold
// misses for the same key are collapsed into a single upstream fetch.
type Service struct {
	store Store
	group singleflight.Group
}

// New creates a cache service over the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// GetOrFetch returns the cached value for key, unmarshalled into dest. On a
// miss it invokes fetch, stores the JSON-serialized result with ttl, and
// returns it. Store failures on the read or write side are logged and the
// fetch proceeds anyway, so a dead cache degrades the gateway rather than
// breaking it. Fetch failures propagate unchanged; nothing is retried.
func (s *Service) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error), dest any) error {
	raw, err := s.store.Get(ctx, key)
	if err == nil {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		// Undecodable entry, treat as a miss and refetch.
		log.Printf("[cache] discarding corrupt entry key=%s", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[cache] read failed key=%s err=%v; fetching direct", key, err)
	}

	data, err, _ := s.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal cache value: %w", err)
		}
		if err := s.store.Set(ctx, key, raw, ttl); err != nil {
			log.Printf("[cache] write failed key=%s err=%v", key, err)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data.([]byte), dest)
}

// Clear removes every entry from the backing store.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.FlushAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping reports whether the backing store currently responds. It never
// returns an error; an unreachable store is simply unhealthy.
func (s *Service) Ping(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}
