package store

import (
	"time"

	"github.com/goliatone/go-storefront-cache/catalog"
)

// reduce applies a to state and reports whether the action is known.
// Every case replaces only the fields it owns.
func reduce(state *State, a Action, now time.Time) bool {
	switch a.Type {
	case ActionSetProducts, ActionFetchProducts + SuffixFulfilled:
		p, ok := a.Payload.(ProductsPayload)
		if !ok {
			return false
		}
		applyProducts(&state.Products, p, now)

	case ActionFetchProducts + SuffixPending, ActionFetchProducts + SuffixRejected,
		ActionFetchCategories + SuffixPending, ActionFetchCategories + SuffixRejected:
		// loading and error bookkeeping belongs to the lifecycle middleware

	case ActionSetLoading:
		loading, ok := a.Payload.(bool)
		if !ok {
			return false
		}
		state.Products.Loading = loading
		if loading {
			state.Products.Error = ""
		}

	case ActionSetError:
		msg, _ := a.Payload.(string)
		state.Products.Error = msg
		if msg != "" {
			state.Products.Loading = false
		}

	case ActionSetCategoriesLoading:
		loading, ok := a.Payload.(bool)
		if !ok {
			return false
		}
		state.Products.CategoriesLoading = loading

	case ActionSetCategoriesError:
		msg, _ := a.Payload.(string)
		state.Products.Error = msg
		if msg != "" {
			state.Products.CategoriesLoading = false
		}

	case ActionClearCache:
		state.Products.CacheKey = ""
		state.Products.LastFetch = time.Time{}

	case ActionSetCategories, ActionFetchCategories + SuffixFulfilled:
		categories, ok := a.Payload.([]string)
		if !ok {
			return false
		}
		state.Products.Categories = withAllCategory(categories)

	case ActionAddToCart:
		item, ok := a.Payload.(CartItem)
		if !ok {
			return false
		}
		addToCart(&state.Cart, item)

	case ActionRemoveFromCart:
		id, ok := a.Payload.(int)
		if !ok {
			return false
		}
		removeFromCart(&state.Cart, id)

	case ActionUpdateQuantity:
		p, ok := a.Payload.(QuantityPayload)
		if !ok {
			return false
		}
		if p.Quantity <= 0 {
			removeFromCart(&state.Cart, p.ID)
			break
		}
		for i := range state.Cart.Items {
			if state.Cart.Items[i].ID == p.ID {
				state.Cart.Items[i].Quantity = p.Quantity
			}
		}

	case ActionToggleCart:
		state.Cart.IsOpen = !state.Cart.IsOpen

	case ActionOpenCart:
		state.Cart.IsOpen = true

	case ActionCloseCart:
		state.Cart.IsOpen = false

	case ActionClearCart:
		state.Cart.Items = []CartItem{}

	default:
		return false
	}

	return true
}

// applyProducts replaces the listing wholesale and settles the status in
// the same step.
func applyProducts(p *ProductsState, payload ProductsPayload, now time.Time) {
	items := payload.Page.Products
	if items == nil {
		items = []catalog.Product{}
	}

	p.Items = items
	p.TotalCount = payload.Page.TotalCount
	p.TotalPages = payload.Page.TotalPages
	p.CurrentPage = payload.Page.CurrentPage
	p.CacheKey = payload.CacheKey
	p.Params = payload.Params
	p.LastFetch = now
	p.Loading = false
	p.Error = ""
}

func addToCart(cart *CartState, item CartItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity += item.Quantity
			return
		}
	}
	cart.Items = append(cart.Items, item)
}

func removeFromCart(cart *CartState, id int) {
	out := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	cart.Items = out
}

func withAllCategory(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, catalog.AllCategories)
	for _, c := range categories {
		if c != catalog.AllCategories {
			out = append(out, c)
		}
	}
	return out
}
