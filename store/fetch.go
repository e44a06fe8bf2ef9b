package store

import (
	"context"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/catalogcache"
)

const productsNamespace = catalogcache.MethodProducts

var fallbackKeys = cache.NewDefaultKeySerializer()

// ProductsKey derives the cache key of params.
func (s *Store) ProductsKey(params catalog.ProductQueryParams) string {
	if s.index != nil {
		return s.index.ProductsKey(params)
	}
	return fallbackKeys.SerializeKey(catalogcache.NamespaceProducts, params.Normalize())
}

// FetchProducts loads a page of products into the store. When the store
// already holds the page for params and the shared cache still has it,
// the call returns without fetching. Every call supersedes the ones
// before it, soft cache hits included, and superseded results are
// discarded.
func (s *Store) FetchProducts(ctx context.Context, params catalog.ProductQueryParams) error {
	params = params.Normalize()
	key := s.ProductsKey(params)

	seq := s.issue(ActionFetchProducts)

	if s.fresh(ctx, key) {
		s.logger.Debug().Str("key", key).Msg("using cached products")
		s.settle(seq)
		return nil
	}

	s.Dispatch(pending(ActionFetchProducts, seq))

	page, err := s.service.FetchProducts(ctx, params)
	if err != nil {
		s.Dispatch(rejected(ActionFetchProducts, seq, err))
		return err
	}

	s.Dispatch(fulfilled(ActionFetchProducts, seq, ProductsPayload{
		Page:     page,
		CacheKey: key,
		Params:   params,
	}))
	return nil
}

// FetchCategories loads the category list unless more than "All" is
// already known.
func (s *Store) FetchCategories(ctx context.Context) error {
	s.mu.RLock()
	known := len(s.state.Products.Categories)
	s.mu.RUnlock()
	if known > 1 {
		return nil
	}

	seq := s.issue(ActionFetchCategories)
	s.Dispatch(pending(ActionFetchCategories, seq))

	categories, err := s.service.FetchCategories(ctx)
	if err != nil {
		s.Dispatch(rejected(ActionFetchCategories, seq, err))
		return err
	}

	s.Dispatch(fulfilled(ActionFetchCategories, seq, categories))
	return nil
}

// settle ends the loading left behind by fetches that seq superseded.
func (s *Store) settle(seq uint64) {
	s.mu.RLock()
	loading := s.state.Products.Loading
	s.mu.RUnlock()

	if loading {
		s.Dispatch(bind(ActionFetchProducts, seq, SetLoading(false)))
	}
}

// fresh reports whether the soft cache can serve key.
func (s *Store) fresh(ctx context.Context, key string) bool {
	if s.index == nil {
		return false
	}

	s.mu.RLock()
	current := s.state.Products.CacheKey == key && len(s.state.Products.Items) > 0
	s.mu.RUnlock()

	return current && s.index.Has(ctx, key)
}
