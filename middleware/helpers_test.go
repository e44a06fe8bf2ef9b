package middleware

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-storefront-cache/catalog"
	"github.com/goliatone/go-storefront-cache/store"
)

type stubService struct {
	err error
}

func (s stubService) FetchProducts(ctx context.Context, params catalog.ProductQueryParams) (catalog.ProductPage, error) {
	if s.err != nil {
		return catalog.ProductPage{}, s.err
	}
	return catalog.ProductPage{
		Products:    []catalog.Product{{ID: 1, Name: "Phone"}},
		TotalCount:  1,
		TotalPages:  1,
		CurrentPage: params.Page,
	}, nil
}

func (s stubService) FetchCategories(ctx context.Context) ([]string, error) {
	return []string{"All", "laptops"}, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Lines() []string {
	s := strings.TrimSpace(b.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
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

// recorder captures every action reaching the reducer
func recorder(types *[]string, mu *sync.Mutex) store.Middleware {
	return func(api store.API) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(a store.Action) bool {
				mu.Lock()
				*types = append(*types, a.Type)
				mu.Unlock()
				return next(a)
			}
		}
	}
}
