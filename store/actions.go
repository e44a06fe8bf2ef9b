package store

import (
	"strings"

	"github.com/goliatone/go-storefront-cache/catalog"
)

// Action types.
const (
	ActionSetProducts   = "products/setProducts"
	ActionSetLoading    = "products/setLoading"
	ActionSetError      = "products/setError"
	ActionClearCache    = "products/clearCache"
	ActionSetCategories = "products/setCategories"

	ActionSetCategoriesLoading = "products/setCategoriesLoading"
	ActionSetCategoriesError   = "products/setCategoriesError"

	ActionFetchProducts   = "products/fetchProducts"
	ActionFetchCategories = "products/fetchCategories"

	ActionAddToCart      = "cart/addToCart"
	ActionRemoveFromCart = "cart/removeFromCart"
	ActionUpdateQuantity = "cart/updateQuantity"
	ActionToggleCart     = "cart/toggleCart"
	ActionOpenCart       = "cart/openCart"
	ActionCloseCart      = "cart/closeCart"
	ActionClearCart      = "cart/clearCart"
)

// Async lifecycle suffixes.
const (
	SuffixPending   = "/pending"
	SuffixFulfilled = "/fulfilled"
	SuffixRejected  = "/rejected"
)

// Action is a state update request.
type Action struct {
	Type    string
	Payload any
	// Err is set on rejected lifecycle actions.
	Err error
	// Seq is the fetch token of lifecycle actions, zero otherwise.
	Seq uint64
	// Origin is the async base type Seq belongs to. Empty means the base
	// is derived from Type.
	Origin string
}

// Follow returns next bound to a's fetch token, so next is discarded
// together with a once a newer fetch has been issued.
func (a Action) Follow(next Action) Action {
	if a.Seq == 0 {
		return next
	}
	return bind(a.origin(), a.Seq, next)
}

func bind(base string, seq uint64, next Action) Action {
	next.Seq = seq
	next.Origin = base
	return next
}

func (a Action) origin() string {
	if a.Origin != "" {
		return a.Origin
	}
	base, _, _ := Lifecycle(a.Type)
	return base
}

// ErrorMessage returns the user-facing message of a rejected action.
func (a Action) ErrorMessage() string {
	if a.Err != nil {
		return catalog.Message(a.Err)
	}
	if msg, ok := a.Payload.(string); ok && msg != "" {
		return msg
	}
	return "Unknown error"
}

// Lifecycle splits an async action type into its base and stage
// ("pending", "fulfilled" or "rejected"). ok is false for plain actions.
func Lifecycle(actionType string) (base, stage string, ok bool) {
	for _, suffix := range []string{SuffixPending, SuffixFulfilled, SuffixRejected} {
		if strings.HasSuffix(actionType, suffix) {
			return strings.TrimSuffix(actionType, suffix), suffix[1:], true
		}
	}
	return actionType, "", false
}

// ProductsPayload carries a fetched page into the store.
type ProductsPayload struct {
	Page     catalog.ProductPage
	CacheKey string
	Params   catalog.ProductQueryParams
}

// QuantityPayload changes the quantity of a cart line.
type QuantityPayload struct {
	ID       int
	Quantity int
}

// SetProducts replaces the product listing.
func SetProducts(page catalog.ProductPage, cacheKey string, params catalog.ProductQueryParams) Action {
	return Action{Type: ActionSetProducts, Payload: ProductsPayload{Page: page, CacheKey: cacheKey, Params: params}}
}

// SetLoading sets the loading flag. Starting a load clears the error.
func SetLoading(loading bool) Action {
	return Action{Type: ActionSetLoading, Payload: loading}
}

// SetError records a failure and ends loading. An empty message clears it.
func SetError(message string) Action {
	return Action{Type: ActionSetError, Payload: message}
}

// SetCategoriesLoading sets the categories loading flag.
func SetCategoriesLoading(loading bool) Action {
	return Action{Type: ActionSetCategoriesLoading, Payload: loading}
}

// SetCategoriesError records a category listing failure and ends its
// loading. Product loading is left alone.
func SetCategoriesError(message string) Action {
	return Action{Type: ActionSetCategoriesError, Payload: message}
}

// LoadingFor returns the action setting the loading flag owned by the
// async base.
func LoadingFor(base string, loading bool) Action {
	if base == ActionFetchCategories {
		return SetCategoriesLoading(loading)
	}
	return SetLoading(loading)
}

// ErrorFor returns the action recording a failure of the async base.
func ErrorFor(base, message string) Action {
	if base == ActionFetchCategories {
		return SetCategoriesError(message)
	}
	return SetError(message)
}

// ClearCache forgets the cache key and fetch time of the listing.
func ClearCache() Action {
	return Action{Type: ActionClearCache}
}

// SetCategories replaces the category list.
func SetCategories(categories []string) Action {
	return Action{Type: ActionSetCategories, Payload: categories}
}

// AddToCart adds item, merging quantities with an existing line.
func AddToCart(item CartItem) Action {
	return Action{Type: ActionAddToCart, Payload: item}
}

// RemoveFromCart removes the line with id.
func RemoveFromCart(id int) Action {
	return Action{Type: ActionRemoveFromCart, Payload: id}
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func UpdateQuantity(id, quantity int) Action {
	return Action{Type: ActionUpdateQuantity, Payload: QuantityPayload{ID: id, Quantity: quantity}}
}

// ToggleCart flips the cart visibility.
func ToggleCart() Action { return Action{Type: ActionToggleCart} }

// OpenCart shows the cart.
func OpenCart() Action { return Action{Type: ActionOpenCart} }

// CloseCart hides the cart.
func CloseCart() Action { return Action{Type: ActionCloseCart} }

// ClearCart empties the cart.
func ClearCart() Action { return Action{Type: ActionClearCart} }

func pending(base string, seq uint64) Action {
	return Action{Type: base + SuffixPending, Seq: seq}
}

func fulfilled(base string, seq uint64, payload any) Action {
	return Action{Type: base + SuffixFulfilled, Seq: seq, Payload: payload}
}

func rejected(base string, seq uint64, err error) Action {
	return Action{Type: base + SuffixRejected, Seq: seq, Err: err}
}
