package catalogcache

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Source method names. Invalidate accepts them in place of a namespace.
const (
	MethodProducts   = "Products"
	MethodCategories = "Categories"
	MethodPosts      = "Posts"
	MethodPostTags   = "PostTags"
)

// Cache key namespaces, one per source method.
const (
	NamespaceProducts   = "products"
	NamespaceCategories = "categories"
	NamespacePosts      = "posts"
	NamespacePostTags   = "post_tags"
)

// Interface assertion to ensure CachedSource implements catalog.Source
var _ catalog.Source = (*CachedSource)(nil)

// TTLs holds the freshness window of each cached method.
type TTLs struct {
	Products   time.Duration `mapstructure:"products"`
	Categories time.Duration `mapstructure:"categories"`
	Posts      time.Duration `mapstructure:"posts"`
	PostTags   time.Duration `mapstructure:"post_tags"`
}

// DefaultTTLs keeps listings for five minutes and label lists for ten.
func DefaultTTLs() TTLs {
	return TTLs{
		Products:   5 * time.Minute,
		Categories: 10 * time.Minute,
		Posts:      5 * time.Minute,
		PostTags:   10 * time.Minute,
	}
}

// CachedSource decorates a catalog source with read-through caching
type CachedSource struct {
	base          catalog.Source
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	ttls          TTLs
	logger        zerolog.Logger

	keyRegistry *xsync.MapOf[string, struct{}]
	tagRegistry *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
}

// Option customizes a CachedSource.
type Option func(*CachedSource)

// WithTTLs overrides the per-method TTLs. Zero fields keep their default.
func WithTTLs(ttls TTLs) Option {
	return func(c *CachedSource) {
		if ttls.Products > 0 {
			c.ttls.Products = ttls.Products
		}
		if ttls.Categories > 0 {
			c.ttls.Categories = ttls.Categories
		}
		if ttls.Posts > 0 {
			c.ttls.Posts = ttls.Posts
		}
		if ttls.PostTags > 0 {
			c.ttls.PostTags = ttls.PostTags
		}
	}
}

// WithLogger sets the logger used for invalidation diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *CachedSource) {
		c.logger = logging.Component(logger, "catalogcache")
	}
}

// New creates a CachedSource that wraps base with caching
func New(base catalog.Source, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedSource {
	if keySerializer == nil {
		keySerializer = cache.NewDefaultKeySerializer()
	}

	c := &CachedSource{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		ttls:          DefaultTTLs(),
		logger:        zerolog.Nop(),
		keyRegistry:   xsync.NewMapOf[string, struct{}](),
		tagRegistry:   xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products returns a page of products, with caching
func (c *CachedSource) Products(ctx context.Context, params catalog.ProductQueryParams) (catalog.ProductPage, error) {
	params = params.Normalize()
	key := c.ProductsKey(params)
	c.trackKey(ctx, key, c.categoryTag(params.Category))
	return cache.GetOrFetch(cache.WithTTL(ctx, c.ttls.Products), c.cache, key, func(ctx context.Context) (catalog.ProductPage, error) {
		return c.base.Products(ctx, params)
	})
}

// Categories returns the category list, with caching
func (c *CachedSource) Categories(ctx context.Context) ([]string, error) {
	key := c.keySerializer.SerializeKey(NamespaceCategories)
	c.trackKey(ctx, key)
	return cache.GetOrFetch(cache.WithTTL(ctx, c.ttls.Categories), c.cache, key, func(ctx context.Context) ([]string, error) {
		return c.base.Categories(ctx)
	})
}

// Posts returns a slice of posts, with caching
func (c *CachedSource) Posts(ctx context.Context, params catalog.PostQueryParams) (catalog.PostPage, error) {
	params = params.Normalize()
	key := c.PostsKey(params)
	c.trackKey(ctx, key)
	return cache.GetOrFetch(cache.WithTTL(ctx, c.ttls.Posts), c.cache, key, func(ctx context.Context) (catalog.PostPage, error) {
		return c.base.Posts(ctx, params)
	})
}

// PostTags returns the post tags, with caching
func (c *CachedSource) PostTags(ctx context.Context) ([]string, error) {
	key := c.keySerializer.SerializeKey(NamespacePostTags)
	c.trackKey(ctx, key)
	return cache.GetOrFetch(cache.WithTTL(ctx, c.ttls.PostTags), c.cache, key, func(ctx context.Context) ([]string, error) {
		return c.base.PostTags(ctx)
	})
}

// ProductsKey returns the cache key of a product query. Params are
// normalized first so equivalent queries share a key.
func (c *CachedSource) ProductsKey(params catalog.ProductQueryParams) string {
	return c.keySerializer.SerializeKey(NamespaceProducts, params.Normalize())
}

// PostsKey returns the cache key of a post query.
func (c *CachedSource) PostsKey(params catalog.PostQueryParams) string {
	return c.keySerializer.SerializeKey(NamespacePosts, params.Normalize())
}

// Has reports whether key currently holds a live entry.
func (c *CachedSource) Has(ctx context.Context, key string) bool {
	return c.cache.Has(ctx, key)
}

// Invalidate removes every tracked key starting with prefix. Method names
// are accepted in place of their namespace.
func (c *CachedSource) Invalidate(ctx context.Context, prefix string) error {
	if ns, ok := namespace(prefix); ok {
		prefix = ns
	}

	var keysToDelete []string
	c.keyRegistry.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			keysToDelete = append(keysToDelete, key)
		}
		return true
	})

	return c.deleteKeys(ctx, keysToDelete)
}

// InvalidateTag removes every key registered under tag.
func (c *CachedSource) InvalidateTag(ctx context.Context, tag string) error {
	tag = normalizeTag(tag)
	if tag == "" {
		return nil
	}

	keys, ok := c.tagRegistry.LoadAndDelete(tag)
	if !ok {
		return nil
	}

	var keysToDelete []string
	keys.Range(func(key string, _ struct{}) bool {
		keysToDelete = append(keysToDelete, key)
		return true
	})

	return c.deleteKeys(ctx, keysToDelete)
}

// InvalidateAll removes every key this source has cached.
func (c *CachedSource) InvalidateAll(ctx context.Context) error {
	err := c.Invalidate(ctx, "")
	c.tagRegistry.Clear()
	return err
}

// trackKey registers a cache key for prefix and tag invalidation
func (c *CachedSource) trackKey(ctx context.Context, key string, tags ...string) {
	c.keyRegistry.Store(key, struct{}{})

	tags = append(tags, cacheTagsFromContext(ctx)...)
	for _, tag := range dedupeStrings(tags) {
		keys, _ := c.tagRegistry.LoadOrCompute(tag, func() *xsync.MapOf[string, struct{}] {
			return xsync.NewMapOf[string, struct{}]()
		})
		keys.Store(key, struct{}{})
	}
}

func (c *CachedSource) deleteKeys(ctx context.Context, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
			if firstErr == nil {
				firstErr = err
			}
		}
		c.keyRegistry.Delete(key)
	}

	if len(keys) > 0 {
		c.logger.Debug().Int("keys", len(keys)).Msg("cache invalidated")
	}
	return firstErr
}

// categoryTag tags product queries with their category so a category can
// be invalidated across pages and searches.
func (c *CachedSource) categoryTag(category string) string {
	if category == "" || category == catalog.AllCategories {
		return ""
	}
	return CategoryTag(category)
}

// CategoryTag is the tag every product query filtered by category carries.
func CategoryTag(category string) string {
	return "category:" + category
}

// namespace maps a method name to its key namespace.
func namespace(method string) (string, bool) {
	switch method {
	case MethodProducts:
		return NamespaceProducts, true
	case MethodCategories:
		return NamespaceCategories, true
	case MethodPosts:
		return NamespacePosts, true
	case MethodPostTags:
		return NamespacePostTags, true
	}
	return "", false
}
