package catalogcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
)

// mockSource counts calls per method and returns canned results
type mockSource struct {
	mu         sync.Mutex
	calls      map[string]int
	page       catalog.ProductPage
	posts      catalog.PostPage
	categories []string
	tags       []string
	err        error
	lastParams catalog.ProductQueryParams
}

func newMockSource() *mockSource {
	return &mockSource{
		calls:      make(map[string]int),
		page:       catalog.ProductPage{Products: []catalog.Product{{ID: 1, Name: "iPhone 9"}}, TotalCount: 1, TotalPages: 1, CurrentPage: 1},
		posts:      catalog.PostPage{Posts: []catalog.Post{{ID: 1}}, Total: 1},
		categories: []string{"smartphones", "laptops"},
		tags:       []string{"history"},
	}
}

func (m *mockSource) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}

func (m *mockSource) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockSource) Products(ctx context.Context, params catalog.ProductQueryParams) (catalog.ProductPage, error) {
	m.recordCall(MethodProducts)
	m.mu.Lock()
	m.lastParams = params
	m.mu.Unlock()
	return m.page, m.err
}

func (m *mockSource) Categories(ctx context.Context) ([]string, error) {
	m.recordCall(MethodCategories)
	return m.categories, m.err
}

func (m *mockSource) Posts(ctx context.Context, params catalog.PostQueryParams) (catalog.PostPage, error) {
	m.recordCall(MethodPosts)
	return m.posts, m.err
}

func (m *mockSource) PostTags(ctx context.Context) ([]string, error) {
	m.recordCall(MethodPostTags)
	return m.tags, m.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, clock *fakeClock) cache.CacheService {
	t.Helper()

	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0

	var opts []cache.Option
	if clock != nil {
		opts = append(opts, cache.WithClock(clock.Now))
	}

	svc, err := cache.NewCacheService(cfg, opts...)
	if err != nil {
		t.Fatalf("NewCacheService() failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNew(t *testing.T) {
	base := newMockSource()
	cacheService := newTestCache(t, nil)

	cached := New(base, cacheService, nil)

	if cached.base != base {
		t.Error("base source not stored correctly")
	}
	if cached.keySerializer == nil {
		t.Error("expected default key serializer")
	}
	if cached.ttls != DefaultTTLs() {
		t.Errorf("expected default TTLs, got %+v", cached.ttls)
	}
}

func TestCachedSource_ReadThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		call   func(context.Context, *CachedSource) error
	}{
		{
			name:   "products",
			method: MethodProducts,
			call: func(ctx context.Context, c *CachedSource) error {
				_, err := c.Products(ctx, catalog.ProductQueryParams{Search: "phone"})
				return err
			},
		},
		{
			name:   "categories",
			method: MethodCategories,
			call: func(ctx context.Context, c *CachedSource) error {
				_, err := c.Categories(ctx)
				return err
			},
		},
		{
			name:   "posts",
			method: MethodPosts,
			call: func(ctx context.Context, c *CachedSource) error {
				_, err := c.Posts(ctx, catalog.PostQueryParams{Tag: "history"})
				return err
			},
		},
		{
			name:   "post tags",
			method: MethodPostTags,
			call: func(ctx context.Context, c *CachedSource) error {
				_, err := c.PostTags(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newMockSource()
			cached := New(base, newTestCache(t, nil), nil)
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				if err := tt.call(ctx, cached); err != nil {
					t.Fatalf("call %d failed: %v", i, err)
				}
			}

			if got := base.callCount(tt.method); got != 1 {
				t.Errorf("expected 1 base call, got %d", got)
			}
		})
	}
}

func TestCachedSource_EquivalentParamsShareKey(t *testing.T) {
	base := newMockSource()
	cached := New(base, newTestCache(t, nil), nil)
	ctx := context.Background()

	if _, err := cached.Products(ctx, catalog.ProductQueryParams{}); err != nil {
		t.Fatalf("Products() failed: %v", err)
	}
	if _, err := cached.Products(ctx, catalog.DefaultProductQueryParams()); err != nil {
		t.Fatalf("Products() failed: %v", err)
	}

	if got := base.callCount(MethodProducts); got != 1 {
		t.Errorf("expected zero params and defaults to share a key, got %d calls", got)
	}
	if base.lastParams != catalog.DefaultProductQueryParams() {
		t.Errorf("base should receive normalized params, got %+v", base.lastParams)
	}

	if cached.ProductsKey(catalog.ProductQueryParams{Page: 2}) == cached.ProductsKey(catalog.ProductQueryParams{Page: 1}) {
		t.Error("different pages must produce different keys")
	}
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	base := newMockSource()
	base.err = errors.New("upstream down")
	cached := New(base, newTestCache(t, nil), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Products(ctx, catalog.ProductQueryParams{}); !errors.Is(err, base.err) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}

	if got := base.callCount(MethodProducts); got != 2 {
		t.Errorf("failed fetches must not be cached, got %d calls", got)
	}
}

func TestCachedSource_PerMethodTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := newMockSource()
	cached := New(base, newTestCache(t, clock), nil, WithTTLs(TTLs{Products: time.Minute}))
	ctx := context.Background()

	cached.Products(ctx, catalog.ProductQueryParams{})
	cached.Categories(ctx)

	clock.Advance(2 * time.Minute)

	cached.Products(ctx, catalog.ProductQueryParams{})
	cached.Categories(ctx)

	if got := base.callCount(MethodProducts); got != 2 {
		t.Errorf("products should expire after one minute, got %d calls", got)
	}
	if got := base.callCount(MethodCategories); got != 1 {
		t.Errorf("categories should still be fresh, got %d calls", got)
	}

	clock.Advance(9 * time.Minute)
	cached.Categories(ctx)
	if got := base.callCount(MethodCategories); got != 2 {
		t.Errorf("categories should expire after ten minutes, got %d calls", got)
	}
}

func TestCachedSource_Has(t *testing.T) {
	cached := New(newMockSource(), newTestCache(t, nil), nil)
	ctx := context.Background()
	params := catalog.ProductQueryParams{Search: "phone"}

	key := cached.ProductsKey(params)
	if cached.Has(ctx, key) {
		t.Fatal("key should not be cached yet")
	}

	cached.Products(ctx, params)

	if !cached.Has(ctx, key) {
		t.Error("key should be cached after a fetch")
	}
}

func TestCachedSource_Invalidate(t *testing.T) {
	base := newMockSource()
	cached := New(base, newTestCache(t, nil), nil)
	ctx := context.Background()

	cached.Products(ctx, catalog.ProductQueryParams{Page: 1})
	cached.Products(ctx, catalog.ProductQueryParams{Page: 2})
	cached.Posts(ctx, catalog.PostQueryParams{})

	if err := cached.Invalidate(ctx, MethodProducts); err != nil {
		t.Fatalf("Invalidate() failed: %v", err)
	}

	cached.Products(ctx, catalog.ProductQueryParams{Page: 1})
	cached.Products(ctx, catalog.ProductQueryParams{Page: 2})
	cached.Posts(ctx, catalog.PostQueryParams{})

	if got := base.callCount(MethodProducts); got != 4 {
		t.Errorf("expected both product pages refetched, got %d calls", got)
	}
	if got := base.callCount(MethodPosts); got != 1 {
		t.Errorf("posts should stay cached, got %d calls", got)
	}
}

func TestCachedSource_InvalidateTag(t *testing.T) {
	base := newMockSource()
	cached := New(base, newTestCache(t, nil), nil)
	ctx := context.Background()

	laptops := catalog.ProductQueryParams{Category: "laptops"}
	phones := catalog.ProductQueryParams{Category: "smartphones"}
	featured := WithCacheTags(ctx, "featured")

	cached.Products(ctx, laptops)
	cached.Products(ctx, phones)
	cached.Posts(featured, catalog.PostQueryParams{})

	if err := cached.InvalidateTag(ctx, CategoryTag("laptops")); err != nil {
		t.Fatalf("InvalidateTag() failed: %v", err)
	}
	if cached.Has(ctx, cached.ProductsKey(laptops)) {
		t.Error("laptops page should be invalidated")
	}
	if !cached.Has(ctx, cached.ProductsKey(phones)) {
		t.Error("smartphones page should stay cached")
	}

	if err := cached.InvalidateTag(ctx, "featured"); err != nil {
		t.Fatalf("InvalidateTag() failed: %v", err)
	}
	if cached.Has(ctx, cached.PostsKey(catalog.PostQueryParams{})) {
		t.Error("tagged posts should be invalidated")
	}

	if err := cached.InvalidateTag(ctx, "unknown"); err != nil {
		t.Errorf("unknown tags should be a no-op, got %v", err)
	}
}

func TestCachedSource_InvalidateAll(t *testing.T) {
	base := newMockSource()
	cached := New(base, newTestCache(t, nil), cache.NewHashedKeySerializer(cache.NewDefaultKeySerializer()))
	ctx := context.Background()

	cached.Products(ctx, catalog.ProductQueryParams{})
	cached.Categories(ctx)
	cached.PostTags(ctx)

	if err := cached.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll() failed: %v", err)
	}

	cached.Products(ctx, catalog.ProductQueryParams{})
	cached.Categories(ctx)
	cached.PostTags(ctx)

	for _, method := range []string{MethodProducts, MethodCategories, MethodPostTags} {
		if got := base.callCount(method); got != 2 {
			t.Errorf("%s: expected refetch after InvalidateAll, got %d calls", method, got)
		}
	}
}

// failingDeleteCache wraps a cache service and fails every Delete.
type failingDeleteCache struct {
	cache.CacheService
	deletes int
}

func (f *failingDeleteCache) Delete(ctx context.Context, key string) error {
	f.deletes++
	return errors.New("backend unavailable")
}

func TestCachedSource_InvalidateReportsDeleteError(t *testing.T) {
	backend := &failingDeleteCache{CacheService: newTestCache(t, nil)}
	cached := New(newMockSource(), backend, nil)
	ctx := context.Background()

	cached.Categories(ctx)
	cached.PostTags(ctx)

	if err := cached.Invalidate(ctx, ""); err == nil {
		t.Error("expected delete error to be reported")
	}
	if backend.deletes != 2 {
		t.Errorf("expected every key to be attempted, got %d deletes", backend.deletes)
	}
}
