// Package catalogcache provides a read-through caching decorator for
// catalog sources.
//
// # Overview
//
// CachedSource wraps any catalog.Source (normally *catalog.HTTPSource) and
// serves repeated queries from a cache.CacheService. Keys are built by a
// cache.KeySerializer from the method namespace and the normalized query
// parameters, so equivalent queries share an entry:
//
//	products::struct:{Page:1,Limit:6,Search:phone,Category:All}
//
// With cache.NewHashedKeySerializer the parameter part is replaced by a
// fixed-width xxhash digest while the namespace prefix is kept.
//
// # Basic Usage
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	source := catalog.NewHTTPSource(executor, catalog.DefaultBaseURL)
//	cached := catalogcache.New(source, svc, cache.NewDefaultKeySerializer())
//
//	catalogService := catalog.NewService(cached)
//
// # Freshness
//
// Each method stores entries with its own TTL (DefaultTTLs: products and
// posts five minutes, categories and post tags ten minutes). Failed
// fetches are never cached.
//
// # Invalidation
//
// Every key read through the decorator is tracked in a registry:
//
//   - Invalidate(ctx, prefix) drops keys by prefix; method names such as
//     MethodProducts are accepted in place of their namespace.
//   - InvalidateTag(ctx, tag) drops keys registered under a tag. Product
//     queries filtered by category are tagged with CategoryTag(category);
//     callers add their own tags with WithCacheTags.
//   - InvalidateAll(ctx) drops everything this decorator cached.
//
// # Soft Cache
//
// ProductsKey and Has let the state store check whether the products it
// already holds are still backed by a live cache entry before refetching.
package catalogcache
