package cacheinfra

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// sturdycService wraps a sturdyc client providing caching behaviour.
// sturdyc applies one TTL to every entry, so per-entry TTLs passed to Set
// or through ContextWithTTL are ignored.
type sturdycService struct {
	client   *sturdyc.Client[any]
	capacity int
	logger   zerolog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewSturdycService creates a new sturdyc cache service adapter.
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New();
// the remaining options are applied via ToSturdycOptions.
func NewSturdycService(cfg Config, opts ...Option) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{
		client:   client,
		capacity: cfg.Capacity,
		logger:   logging.Component(o.logger, "cache.sturdyc"),
	}, nil
}

// GetOrFetch delegates to sturdyc, which collapses concurrent fetches of
// the same key and refreshes hot entries early when configured to.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if _, ok := s.client.Get(key); ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

// Get returns the value stored under key.
func (s *sturdycService) Get(ctx context.Context, key string) (any, bool) {
	v, ok := s.client.Get(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key using the client wide TTL.
func (s *sturdycService) Set(ctx context.Context, key string, value any, _ time.Duration) error {
	s.client.Set(key, value)
	return nil
}

// Has reports whether key holds a live entry.
func (s *sturdycService) Has(ctx context.Context, key string) bool {
	_, ok := s.client.Get(key)
	return ok
}

// Delete removes a single entry.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose keys start with prefix.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Clear removes every entry.
func (s *sturdycService) Clear(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	s.logger.Debug().Msg("cache cleared")
	return nil
}

// Stats reports size and the hit/miss counters observed by the adapter.
func (s *sturdycService) Stats() Stats {
	return Stats{
		Backend:  BackendSturdyc,
		Size:     s.client.Size(),
		Capacity: s.capacity,
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
	}
}

// Close is a no-op; sturdyc has no resources to release.
func (s *sturdycService) Close() error {
	return nil
}
