// Package config loads the storefront configuration from defaults, an
// optional YAML file, an optional .env file and STOREFRONT_ environment
// variables, in increasing order of precedence.
package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/catalogcache"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
)

// Environments accepted by Config.Environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the root configuration.
type Config struct {
	Environment string         `yaml:"environment" mapstructure:"environment"`
	Log         logging.Config `yaml:"log" mapstructure:"log"`
	API         APIConfig      `yaml:"api" mapstructure:"api"`
	Cache       CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Catalog     CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Store       StoreConfig    `yaml:"store" mapstructure:"store"`
}

// APIConfig configures the request executor.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries   int           `yaml:"retries" mapstructure:"retries"`
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
}

// CacheConfig configures the shared response cache.
type CacheConfig struct {
	Backend            string        `yaml:"backend" mapstructure:"backend"`
	Capacity           int           `yaml:"capacity" mapstructure:"capacity"`
	TTL                time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	NumShards          int           `yaml:"num_shards" mapstructure:"num_shards"`
	EvictionPercentage int           `yaml:"eviction_percentage" mapstructure:"eviction_percentage"`
	HashedKeys         bool          `yaml:"hashed_keys" mapstructure:"hashed_keys"`
}

// CatalogConfig configures the query services.
type CatalogConfig struct {
	TTL       catalogcache.TTLs `yaml:"ttl" mapstructure:"ttl"`
	PageSize  int               `yaml:"page_size" mapstructure:"page_size"`
	PostLimit int               `yaml:"post_limit" mapstructure:"post_limit"`
}

// StoreConfig configures the store middleware.
type StoreConfig struct {
	Diagnostics   bool          `yaml:"diagnostics" mapstructure:"diagnostics"`
	QueueSize     int           `yaml:"queue_size" mapstructure:"queue_size"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
	Performance   bool          `yaml:"performance" mapstructure:"performance"`
	MetricsSize   int           `yaml:"metrics_size" mapstructure:"metrics_size"`
	SlowThreshold time.Duration `yaml:"slow_threshold" mapstructure:"slow_threshold"`
}

// IsDevelopment reports whether the development tooling should be on.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// CacheServiceConfig converts the cache section.
func (c Config) CacheServiceConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Backend = c.Cache.Backend
	cfg.Capacity = c.Cache.Capacity
	cfg.TTL = c.Cache.TTL
	cfg.CleanupInterval = c.Cache.CleanupInterval
	cfg.NumShards = c.Cache.NumShards
	cfg.EvictionPercentage = c.Cache.EvictionPercentage
	return cfg
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Environment, validation.Required,
			validation.In(EnvDevelopment, EnvStaging, EnvProduction, EnvTest)),
		validation.Field(&c.Log),
		validation.Field(&c.API),
		validation.Field(&c.Cache),
		validation.Field(&c.Catalog),
		validation.Field(&c.Store),
	)
}

// Validate checks the executor settings.
func (c APIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.BaseDelay, validation.Min(time.Duration(0))),
	)
}

// Validate checks the cache settings.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(cache.BackendMemory, cache.BackendSturdyc, cache.BackendRistretto)),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Min(0), validation.Max(100)),
	)
}

// Validate checks the catalog settings.
func (c CatalogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(catalog.MaxPageSize)),
		validation.Field(&c.PostLimit, validation.Required, validation.Min(1), validation.Max(catalog.MaxPageSize)),
	)
}

// Validate checks the middleware settings.
func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.QueueSize, validation.Min(0)),
		validation.Field(&c.MetricsSize, validation.Min(0)),
	)
}
