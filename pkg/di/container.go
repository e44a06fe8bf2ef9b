package di

import (
	"errors"
	"io"
	"net/http"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/catalogcache"
	"github.com/goliatone/go-storefront-cache/config"
	"github.com/goliatone/go-storefront-cache/middleware"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/goliatone/go-storefront-cache/request"
	"github.com/goliatone/go-storefront-cache/store"
	"github.com/rs/zerolog"
)

// Container wires the storefront data layer from a config.Config. Every
// accessor returns the same instance for the life of the container.
type Container struct {
	config        config.Config
	logger        zerolog.Logger
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	executor      *request.Executor
	source        *catalogcache.CachedSource
	service       *catalog.Service
	store         *store.Store
	diagnostics   *middleware.Diagnostics
	performance   *middleware.Performance
}

type containerOptions struct {
	logger     *zerolog.Logger
	httpClient *http.Client
}

// Option customizes NewContainer.
type Option func(*containerOptions)

// WithLogger uses logger instead of building one from the log section.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *containerOptions) { o.logger = &logger }
}

// WithHTTPClient sets the client used by the request executor.
func WithHTTPClient(client *http.Client) Option {
	return func(o *containerOptions) { o.httpClient = client }
}

// NewContainer validates cfg and builds logger, cache, executor, cached
// catalog source, service and store, in that order.
func NewContainer(cfg config.Config, opts ...Option) (*Container, error) {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Log)
	if o.logger != nil {
		logger = *o.logger
	}

	cacheService, err := cache.NewCacheService(cfg.CacheServiceConfig(), cache.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	keySerializer := cache.NewDefaultKeySerializer()
	if cfg.Cache.HashedKeys {
		keySerializer = cache.NewHashedKeySerializer(keySerializer)
	}

	reqCfg := request.DefaultConfig()
	reqCfg.Retries = cfg.API.Retries
	reqCfg.Timeout = cfg.API.Timeout
	reqCfg.BaseDelay = cfg.API.BaseDelay

	execOpts := []request.ExecutorOption{request.WithLogger(logger)}
	if o.httpClient != nil {
		execOpts = append(execOpts, request.WithHTTPClient(o.httpClient))
	}
	executor, err := request.NewExecutor(reqCfg, execOpts...)
	if err != nil {
		return nil, abort(err, cacheService)
	}

	source := catalogcache.New(
		catalog.NewHTTPSource(executor, cfg.API.BaseURL),
		cacheService,
		keySerializer,
		catalogcache.WithTTLs(cfg.Catalog.TTL),
		catalogcache.WithLogger(logger),
	)
	service := catalog.NewService(source, catalog.WithLogger(logger))

	dev := cfg.IsDevelopment()
	diagnostics := middleware.NewDiagnostics(logger, middleware.DiagnosticsConfig{
		Enabled:       dev && cfg.Store.Diagnostics,
		QueueSize:     cfg.Store.QueueSize,
		FlushInterval: cfg.Store.FlushInterval,
	})
	performance := middleware.NewPerformance(logger, middleware.PerformanceConfig{
		Enabled:       dev && cfg.Store.Performance,
		Capacity:      cfg.Store.MetricsSize,
		SlowThreshold: cfg.Store.SlowThreshold,
	})

	st := store.New(service,
		store.WithCacheIndex(source),
		store.WithLogger(logger),
		store.WithMiddleware(
			performance.Middleware(),
			diagnostics.Middleware(),
			middleware.Lifecycle(),
		),
	)

	return &Container{
		config:        cfg,
		logger:        logger,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		executor:      executor,
		source:        source,
		service:       service,
		store:         st,
		diagnostics:   diagnostics,
		performance:   performance,
	}, nil
}

// NewContainerWithDefaults builds a container from config.Default().
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(config.Default(), opts...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config { return c.config }

// Logger returns the root logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// CacheService returns the shared response cache.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

// KeySerializer returns the key serializer used by the cached source.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// Executor returns the request executor.
func (c *Container) Executor() *request.Executor { return c.executor }

// Source returns the cached catalog source.
func (c *Container) Source() *catalogcache.CachedSource { return c.source }

// Service returns the catalog query service.
func (c *Container) Service() *catalog.Service { return c.service }

// Store returns the product and cart store.
func (c *Container) Store() *store.Store { return c.store }

// Diagnostics returns the batched action logger.
func (c *Container) Diagnostics() *middleware.Diagnostics { return c.diagnostics }

// Performance returns the dispatch timing monitor.
func (c *Container) Performance() *middleware.Performance { return c.performance }

// ProductQuery returns the first product page with the configured page size.
func (c *Container) ProductQuery() catalog.ProductQueryParams {
	params := catalog.DefaultProductQueryParams()
	params.Limit = c.config.Catalog.PageSize
	return params
}

// PostQuery returns the first post slice with the configured limit.
func (c *Container) PostQuery() catalog.PostQueryParams {
	params := catalog.DefaultPostQueryParams()
	params.Limit = c.config.Catalog.PostLimit
	return params
}

// Close flushes diagnostics, reports slow actions and stops the cache.
func (c *Container) Close() error {
	var errs []error
	if err := c.diagnostics.Close(); err != nil {
		errs = append(errs, err)
	}
	c.performance.Report()
	if err := c.cacheService.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// abort closes what was built before a construction step failed with err.
// Close failures are joined into the returned error.
func abort(err error, built ...io.Closer) error {
	errs := []error{err}
	for _, c := range built {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
