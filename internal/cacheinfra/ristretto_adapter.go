package cacheinfra

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ristrettoService adapts a ristretto cache. Every entry costs 1, so
// Capacity bounds the entry count. Ristretto may reject writes under
// contention; a rejected write behaves like a later miss.
type ristrettoService struct {
	cache    *ristretto.Cache
	keys     *xsync.MapOf[string, struct{}]
	capacity int
	ttl      time.Duration
	logger   zerolog.Logger
	group    singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewRistrettoService creates a ristretto backed cache service.
func NewRistrettoService(cfg Config, opts ...Option) (*ristrettoService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	buffer := cfg.BufferItems
	if buffer <= 0 {
		buffer = 64
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		// entries cost 1 each, so MaxCost counts entries
		NumCounters:        int64(cfg.Capacity) * 10,
		MaxCost:            int64(cfg.Capacity),
		BufferItems:        buffer,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &ristrettoService{
		cache:    c,
		keys:     xsync.NewMapOf[string, struct{}](),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		logger:   logging.Component(o.logger, "cache.ristretto"),
	}, nil
}

// GetOrFetch returns the cached value or loads it once per key.
func (s *ristrettoService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		result, err := callFetchFn(ctx, fetchFn)
		if err != nil {
			return nil, err
		}
		_ = s.Set(ctx, key, result, TTLFromContext(ctx))
		return result, nil
	})
	return v, err
}

// Get returns the value stored under key.
func (s *ristrettoService) Get(ctx context.Context, key string) (any, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		s.keys.Delete(key)
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return v, true
}

// Set stores value under key. Writes are flushed before returning so the
// value is visible to the next Get.
func (s *ristrettoService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	if s.cache.SetWithTTL(key, value, 1, ttl) {
		s.keys.Store(key, struct{}{})
	} else {
		s.logger.Debug().Str("key", key).Msg("ristretto rejected write")
	}
	s.cache.Wait()
	return nil
}

// Has reports whether key holds a live entry.
func (s *ristrettoService) Has(ctx context.Context, key string) bool {
	_, ok := s.cache.Get(key)
	return ok
}

// Delete removes a single entry.
func (s *ristrettoService) Delete(ctx context.Context, key string) error {
	s.cache.Del(key)
	s.keys.Delete(key)
	return nil
}

// DeleteByPrefix removes every tracked key starting with prefix.
func (s *ristrettoService) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.keys.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			s.cache.Del(key)
			s.keys.Delete(key)
		}
		return true
	})
	return nil
}

// Clear removes every entry.
func (s *ristrettoService) Clear(ctx context.Context) error {
	s.cache.Clear()
	s.keys.Clear()
	return nil
}

// Stats reports the live tracked keys and hit/miss counters.
func (s *ristrettoService) Stats() Stats {
	size := 0
	s.keys.Range(func(key string, _ struct{}) bool {
		if _, ok := s.cache.Get(key); ok {
			size++
		} else {
			s.keys.Delete(key)
		}
		return true
	})

	return Stats{
		Backend:  BackendRistretto,
		Size:     size,
		Capacity: s.capacity,
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
	}
}

// Close releases the ristretto goroutines.
func (s *ristrettoService) Close() error {
	s.cache.Close()
	return nil
}
