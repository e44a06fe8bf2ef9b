package store

import (
	"time"

	"github.com/goliatone/go-storefront-cache/catalog"
)

// ProductsState is the product listing slice of the store. Loading tracks
// product fetches and CategoriesLoading the category listing, so either
// can settle without ending the other. Error is shared.
type ProductsState struct {
	Items             []catalog.Product
	Categories        []string
	Loading           bool
	CategoriesLoading bool
	Error             string
	CurrentPage       int
	TotalPages        int
	TotalCount        int
	LastFetch         time.Time
	CacheKey          string
	Params            catalog.ProductQueryParams
}

// CartItem is one cart line. Quantity is always positive.
type CartItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// CartState is the cart slice of the store.
type CartState struct {
	Items  []CartItem
	IsOpen bool
}

// State is the whole store state.
type State struct {
	Products ProductsState
	Cart     CartState
}

// InitialState returns an empty store with only the "All" category known.
func InitialState() State {
	return State{
		Products: ProductsState{
			Items:      []catalog.Product{},
			Categories: []string{catalog.AllCategories},
		},
		Cart: CartState{Items: []CartItem{}},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Products.Items = cloneProducts(s.Products.Items)
	out.Products.Categories = append([]string{}, s.Products.Categories...)
	out.Cart.Items = append([]CartItem{}, s.Cart.Items...)
	return out
}

func cloneProducts(in []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(in))
	for i, p := range in {
		p.Images = append([]string{}, p.Images...)
		out[i] = p
	}
	return out
}

// CartTotal is the sum of price times quantity over the cart.
func (s State) CartTotal() float64 {
	total := 0.0
	for _, item := range s.Cart.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CartCount is the number of units in the cart.
func (s State) CartCount() int {
	count := 0
	for _, item := range s.Cart.Items {
		count += item.Quantity
	}
	return count
}

// CartItemFromProduct builds a cart line for p with quantity 1.
func CartItemFromProduct(p catalog.Product) CartItem {
	return CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, Quantity: 1}
}
