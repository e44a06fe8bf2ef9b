package cacheinfra

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidResultType is returned when a cached value cannot be converted
// to the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// Service is the contract every backend implements. The public cache
// package re-exports it as cache.CacheService.
type Service interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats is a point in time snapshot of cache activity.
type Stats struct {
	Backend     string       `json:"backend"`
	Size        int          `json:"size"`
	Capacity    int          `json:"capacity"`
	Hits        uint64       `json:"hits"`
	Misses      uint64       `json:"misses"`
	Evictions   uint64       `json:"evictions"`
	Expirations uint64       `json:"expirations"`
	Items       []EntryStats `json:"items,omitempty"`
}

// EntryStats describes a single entry. Only the memory backend tracks
// per-entry access statistics.
type EntryStats struct {
	Key          string        `json:"key"`
	Age          time.Duration `json:"age"`
	TTL          time.Duration `json:"ttl"`
	AccessCount  int64         `json:"access_count"`
	LastAccessed time.Time     `json:"last_accessed"`
}

// Option customizes a backend at construction time.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces the time source. Only the memory backend honours it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewService builds the backend selected by cfg.Backend.
func NewService(cfg Config, opts ...Option) (Service, error) {
	switch cfg.backend() {
	case BackendSturdyc:
		return NewSturdycService(cfg, opts...)
	case BackendRistretto:
		return NewRistrettoService(cfg, opts...)
	default:
		return NewMemoryService(cfg, opts...)
	}
}

type ttlContextKey struct{}

// ContextWithTTL attaches a TTL override used when GetOrFetch populates an entry.
func ContextWithTTL(ctx context.Context, ttl time.Duration) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 {
		return ctx
	}
	return context.WithValue(ctx, ttlContextKey{}, ttl)
}

// TTLFromContext returns the TTL override stored in ctx, or zero.
func TTLFromContext(ctx context.Context) time.Duration {
	if ctx == nil {
		return 0
	}
	if ttl, ok := ctx.Value(ttlContextKey{}).(time.Duration); ok {
		return ttl
	}
	return 0
}

// validateFetchFn checks fetchFn has the signature func(context.Context) (T, error).
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// callFetchFn invokes a pre-validated fetch function of any result type.
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if results[0].IsValid() && results[0].CanInterface() {
		result = results[0].Interface()
	}

	var err error
	if errValue := results[1]; errValue.IsValid() && !errValue.IsNil() {
		err = errValue.Interface().(error)
	}

	return result, err
}
