package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-storefront-cache/internal/cacheinfra"
	"github.com/rs/zerolog"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached value does
// not have the requested type.
var ErrInvalidResultType = cacheinfra.ErrInvalidResultType

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService is the single cache abstraction of the storefront. Every
// backend honours the same contract: Get purges expired entries, Has does
// not count as an access, and GetOrFetch never caches errors.
type CacheService = cacheinfra.Service

// Stats is a snapshot of cache activity.
type Stats = cacheinfra.Stats

// EntryStats describes one cached entry.
type EntryStats = cacheinfra.EntryStats

// Option customizes a cache backend.
type Option = cacheinfra.Option

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return cacheinfra.WithLogger(logger)
}

// WithClock replaces the time source of the memory backend.
func WithClock(now func() time.Time) Option {
	return cacheinfra.WithClock(now)
}

// WithTTL returns a context that makes GetOrFetch store new entries with ttl
// instead of the backend default.
func WithTTL(ctx context.Context, ttl time.Duration) context.Context {
	return cacheinfra.ContextWithTTL(ctx, ttl)
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}

	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
