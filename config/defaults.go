package config

import (
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/catalogcache"
	"github.com/goliatone/go-storefront-cache/middleware"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/goliatone/go-storefront-cache/request"
	"github.com/spf13/viper"
)

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	logCfg := logging.DefaultConfig()
	v.SetDefault("log.level", logCfg.Level)
	v.SetDefault("log.format", logCfg.Format)
	v.SetDefault("log.output", logCfg.Output)
	v.SetDefault("log.no_color", logCfg.NoColor)
	v.SetDefault("log.timestamp", logCfg.Timestamp)

	reqCfg := request.DefaultConfig()
	v.SetDefault("api.base_url", catalog.DefaultBaseURL)
	v.SetDefault("api.timeout", reqCfg.Timeout)
	v.SetDefault("api.retries", reqCfg.Retries)
	v.SetDefault("api.base_delay", reqCfg.BaseDelay)

	cacheCfg := cache.DefaultConfig()
	v.SetDefault("cache.backend", cacheCfg.Backend)
	v.SetDefault("cache.capacity", cacheCfg.Capacity)
	v.SetDefault("cache.ttl", cacheCfg.TTL)
	v.SetDefault("cache.cleanup_interval", cacheCfg.CleanupInterval)
	v.SetDefault("cache.num_shards", cacheCfg.NumShards)
	v.SetDefault("cache.eviction_percentage", cacheCfg.EvictionPercentage)
	v.SetDefault("cache.hashed_keys", false)

	ttls := catalogcache.DefaultTTLs()
	v.SetDefault("catalog.ttl.products", ttls.Products)
	v.SetDefault("catalog.ttl.categories", ttls.Categories)
	v.SetDefault("catalog.ttl.posts", ttls.Posts)
	v.SetDefault("catalog.ttl.post_tags", ttls.PostTags)
	v.SetDefault("catalog.page_size", catalog.DefaultPageSize)
	v.SetDefault("catalog.post_limit", catalog.DefaultPostLimit)

	diag := middleware.DefaultDiagnosticsConfig()
	perf := middleware.DefaultPerformanceConfig()
	v.SetDefault("store.diagnostics", true)
	v.SetDefault("store.queue_size", diag.QueueSize)
	v.SetDefault("store.flush_interval", diag.FlushInterval)
	v.SetDefault("store.performance", true)
	v.SetDefault("store.metrics_size", perf.Capacity)
	v.SetDefault("store.slow_threshold", perf.SlowThreshold)
}
