package cacheinfra

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// memoryEntry is a single cached value with its access statistics.
type memoryEntry struct {
	value        any
	createdAt    time.Time
	ttl          time.Duration
	accessCount  int64
	lastAccessed time.Time
	// tick orders entries by recency independently of clock resolution.
	tick uint64
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// memoryService is a capacity bounded TTL cache with least recently
// accessed eviction and a background sweeper.
type memoryService struct {
	mu       sync.Mutex
	entries  map[string]*memoryEntry
	capacity int
	ttl      time.Duration
	tick     uint64

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	now    func() time.Time
	logger zerolog.Logger
	group  singleflight.Group

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryService creates the default in-process backend.
func NewMemoryService(cfg Config, opts ...Option) (*memoryService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &memoryService{
		entries:  make(map[string]*memoryEntry, cfg.Capacity),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		now:      o.now,
		logger:   logging.Component(o.logger, "cache.memory"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go s.sweep(cfg.CleanupInterval)
	} else {
		close(s.done)
	}

	return s, nil
}

// Get returns the value stored under key. Expired entries are purged and
// reported as a miss. Hits update the entry's access statistics.
func (s *memoryService) Get(ctx context.Context, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		s.logger.Debug().Str("key", key).Msg("cache miss")
		return nil, false
	}

	now := s.now()
	if e.expired(now) {
		delete(s.entries, key)
		s.expirations++
		s.misses++
		s.logger.Debug().Str("key", key).Msg("cache expired")
		return nil, false
	}

	s.tick++
	e.tick = s.tick
	e.accessCount++
	e.lastAccessed = now
	s.hits++
	s.logger.Debug().Str("key", key).Int64("access_count", e.accessCount).Msg("cache hit")

	return e.value, true
}

// Set stores value under key. A non-positive ttl uses the configured
// default. Adding a new key to a full cache evicts the least recently
// accessed entry first.
func (s *memoryService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.evictLRU()
	}

	now := s.now()
	s.tick++
	s.entries[key] = &memoryEntry{
		value:        value,
		createdAt:    now,
		ttl:          ttl,
		lastAccessed: now,
		tick:         s.tick,
	}

	s.logger.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int("size", len(s.entries)).
		Msg("cache set")

	return nil
}

// Has reports whether key holds a live entry without touching access statistics.
func (s *memoryService) Has(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		s.expirations++
		return false
	}
	return true
}

// GetOrFetch returns the cached value for key or loads it with fetchFn.
// Concurrent loads of the same key share a single fetchFn call and
// errors are never cached.
func (s *memoryService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
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
		if err := s.Set(ctx, key, result, TTLFromContext(ctx)); err != nil {
			return nil, err
		}
		return result, nil
	})

	return v, err
}

// Delete removes key from the cache.
func (s *memoryService) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (s *memoryService) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Clear drops every entry. Counters are kept.
func (s *memoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*memoryEntry, s.capacity)
	s.mu.Unlock()

	s.logger.Debug().Msg("cache cleared")
	return nil
}

// Cleanup purges expired entries and returns how many were removed.
func (s *memoryService) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.expirations += uint64(removed)

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("cache cleanup")
	}
	return removed
}

// Stats returns counters and per-entry statistics sorted by key.
func (s *memoryService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	items := make([]EntryStats, 0, len(s.entries))
	for key, e := range s.entries {
		items = append(items, EntryStats{
			Key:          key,
			Age:          now.Sub(e.createdAt),
			TTL:          e.ttl,
			AccessCount:  e.accessCount,
			LastAccessed: e.lastAccessed,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	return Stats{
		Backend:     BackendMemory,
		Size:        len(s.entries),
		Capacity:    s.capacity,
		Hits:        s.hits,
		Misses:      s.misses,
		Evictions:   s.evictions,
		Expirations: s.expirations,
		Items:       items,
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (s *memoryService) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// evictLRU removes the entry with the oldest access. Callers hold s.mu.
func (s *memoryService) evictLRU() {
	var (
		oldestKey  string
		oldestTick uint64
		found      bool
	)

	for key, e := range s.entries {
		if !found || e.tick < oldestTick {
			oldestKey = key
			oldestTick = e.tick
			found = true
		}
	}

	if found {
		delete(s.entries, oldestKey)
		s.evictions++
		s.logger.Debug().Str("key", oldestKey).Msg("cache lru eviction")
	}
}

func (s *memoryService) sweep(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stop:
			return
		}
	}
}
