package store

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/rs/zerolog"
)

// DispatchFunc delivers an action and reports whether it was applied.
// Unknown actions and superseded fetch results return false.
type DispatchFunc func(Action) bool

// API is the view of the store handed to middleware.
type API interface {
	State() State
	Dispatch(Action) bool
}

// Middleware wraps the dispatch path. Middleware runs without the store
// lock held and may dispatch further actions through api.
type Middleware func(api API) func(next DispatchFunc) DispatchFunc

// ProductService is the catalog query API the store fetches through.
// *catalog.Service satisfies it.
type ProductService interface {
	FetchProducts(ctx context.Context, params catalog.ProductQueryParams) (catalog.ProductPage, error)
	FetchCategories(ctx context.Context) ([]string, error)
}

// CacheIndex exposes the shared response cache to the store's soft cache.
// *catalogcache.CachedSource satisfies it.
type CacheIndex interface {
	ProductsKey(params catalog.ProductQueryParams) string
	Has(ctx context.Context, key string) bool
	Invalidate(ctx context.Context, prefix string) error
}

// Listener is notified with a snapshot after every applied action.
type Listener func(State)

// Store holds product and cart state. It is safe for concurrent use.
type Store struct {
	service ProductService
	index   CacheIndex
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	state  State
	issued map[string]uint64

	subMu     sync.RWMutex
	listeners map[uint64]Listener
	nextSub   uint64

	middleware []Middleware
	dispatch   DispatchFunc
}

var _ API = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithCacheIndex enables the soft cache backed by index.
func WithCacheIndex(index CacheIndex) Option {
	return func(s *Store) {
		s.index = index
	}
}

// WithMiddleware appends middleware. The first one added sees actions
// first.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Store) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.Component(logger, "store")
	}
}

// WithClock replaces the time source used for LastFetch.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInitialState seeds the store.
func WithInitialState(state State) Option {
	return func(s *Store) {
		s.state = state.Clone()
	}
}

// New creates a Store fetching through service.
func New(service ProductService, opts ...Option) *Store {
	s := &Store{
		service:   service,
		logger:    zerolog.Nop(),
		now:       time.Now,
		state:     InitialState(),
		issued:    make(map[string]uint64),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}

	dispatch := s.apply
	for i := len(s.middleware) - 1; i >= 0; i-- {
		dispatch = s.middleware[i](s)(dispatch)
	}
	s.dispatch = dispatch

	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch sends a through the middleware chain to the reducer.
func (s *Store) Dispatch(a Action) bool {
	return s.dispatch(a)
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// apply is the innermost dispatch step.
func (s *Store) apply(a Action) bool {
	s.mu.Lock()
	if a.Seq != 0 {
		if latest := s.issued[a.origin()]; a.Seq != latest {
			s.mu.Unlock()
			s.logger.Debug().
				Str("action", a.Type).
				Uint64("seq", a.Seq).
				Uint64("latest", latest).
				Msg("discarding superseded result")
			return false
		}
	}

	if !reduce(&s.state, a, s.now()) {
		s.mu.Unlock()
		s.logger.Debug().Str("action", a.Type).Msg("ignoring unknown action")
		return false
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

func (s *Store) notify(state State) {
	s.subMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// issue hands out the next fetch token for base.
func (s *Store) issue(base string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[base]++
	return s.issued[base]
}

// SetProducts replaces the product listing.
func (s *Store) SetProducts(page catalog.ProductPage, cacheKey string, params catalog.ProductQueryParams) {
	s.Dispatch(SetProducts(page, cacheKey, params))
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) { s.Dispatch(SetLoading(loading)) }

// SetError records a failure message.
func (s *Store) SetError(message string) { s.Dispatch(SetError(message)) }

// SetCategories replaces the category list.
func (s *Store) SetCategories(categories []string) { s.Dispatch(SetCategories(categories)) }

// ClearCache makes the next FetchProducts go to the network. When a cache
// index is configured its product entries are invalidated too.
func (s *Store) ClearCache(ctx context.Context) error {
	s.Dispatch(ClearCache())
	if s.index == nil {
		return nil
	}
	return s.index.Invalidate(ctx, productsNamespace)
}

// AddToCart adds item, merging with an existing line for the same id.
func (s *Store) AddToCart(item CartItem) { s.Dispatch(AddToCart(item)) }

// RemoveFromCart removes the line with id.
func (s *Store) RemoveFromCart(id int) { s.Dispatch(RemoveFromCart(id)) }

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (s *Store) UpdateQuantity(id, quantity int) { s.Dispatch(UpdateQuantity(id, quantity)) }

// ToggleCart flips the cart visibility.
func (s *Store) ToggleCart() { s.Dispatch(ToggleCart()) }

// OpenCart shows the cart.
func (s *Store) OpenCart() { s.Dispatch(OpenCart()) }

// CloseCart hides the cart.
func (s *Store) CloseCart() { s.Dispatch(CloseCart()) }

// ClearCart empties the cart.
func (s *Store) ClearCart() { s.Dispatch(ClearCart()) }

// CartTotal is the sum of price times quantity over the cart.
func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CartTotal()
}

// CartCount is the number of units in the cart.
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CartCount()
}
