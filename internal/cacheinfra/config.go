package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

// Supported cache backends.
const (
	BackendMemory    = "memory"
	BackendSturdyc   = "sturdyc"
	BackendRistretto = "ristretto"
)

// Config holds the configuration shared by every cache backend.
// Fields that only apply to one backend are ignored by the others.
type Config struct {
	// Backend selects the storage implementation. Defaults to BackendMemory.
	Backend string

	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// TTL is the default time-to-live for cached entries.
	// Must be greater than 0.
	TTL time.Duration

	// CleanupInterval sets how often the memory backend sweeps expired
	// entries. Zero disables the sweeper; expired entries are then only
	// purged lazily on read.
	CleanupInterval time.Duration

	// NumShards determines the number of sturdyc shards.
	NumShards int

	// EvictionPercentage specifies what percentage of entries sturdyc evicts
	// when it reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures sturdyc early refreshes. Nil disables them.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage makes sturdyc remember keys that returned
	// sturdyc.ErrNotFound.
	MissingRecordStorage bool

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration

	// BufferItems is the ristretto Get buffer size. Defaults to 64.
	BufferItems int64
}

// EarlyRefreshConfig configures sturdyc early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns the memory backend configuration used by the
// storefront: 50 entries, five minute TTL, one minute sweep.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		Capacity:           50,
		TTL:                5 * time.Minute,
		CleanupInterval:    time.Minute,
		NumShards:          8,
		EvictionPercentage: 10,
		BufferItems:        64,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL and EvictionPercentage are passed directly
// to sturdyc.New() and are not included here.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid for the selected backend.
func (c Config) Validate() error {
	switch c.backend() {
	case BackendMemory, BackendSturdyc, BackendRistretto:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of memory, sturdyc, ristretto"}
	}

	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.CleanupInterval < 0 {
		return &ConfigError{Field: "CleanupInterval", Message: "must be non-negative"}
	}

	if c.backend() != BackendSturdyc {
		return nil
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.MaxAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.SyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.SyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh.RetryBaseDelay", Message: "must be non-negative"}
		}
	}

	return nil
}

func (c Config) backend() string {
	if c.Backend == "" {
		return BackendMemory
	}
	return c.Backend
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
