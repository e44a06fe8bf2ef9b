// Package cache is the single response cache abstraction of the storefront.
//
// # Overview
//
//   - CacheService: read-through plus explicit Set/Get/Has/Delete/Clear with
//     per-entry TTLs, prefix invalidation and statistics.
//   - KeySerializer: builds stable keys from a method name and arguments.
//     Maps are serialized with sorted keys, so two query parameter sets
//     with the same values always map to the same key.
//
// # Backends
//
// Config.Backend selects the implementation:
//
//   - "memory" (default): fixed capacity, least recently accessed eviction,
//     lazy expiry on read plus a periodic sweeper. An entry is valid while
//     now - createdAt <= ttl.
//   - "sturdyc": sharded cache with early refreshes. One TTL for all entries.
//   - "ristretto": admission based cache with per-entry TTL.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	serializer := cache.NewHashedKeySerializer(nil)
//	key := serializer.SerializeKey("products", params)
//	page, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (Page, error) {
//		return source.Products(ctx, params)
//	})
//
// Caches are always constructed explicitly and passed to their consumers;
// the package keeps no global state.
package cache
