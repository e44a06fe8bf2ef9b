package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-storefront-cache/pkg/testsupport"
	"github.com/goliatone/go-storefront-cache/request"
)

func newTestService(t *testing.T) (*Service, *testsupport.FakeAPI) {
	t.Helper()

	api := testsupport.NewFakeAPI(t)

	cfg := request.DefaultConfig()
	cfg.Retries = 1
	cfg.BaseDelay = 0
	cfg.Timeout = 2 * time.Second

	exec, err := request.NewExecutor(cfg)
	if err != nil {
		t.Fatalf("NewExecutor() failed: %v", err)
	}

	return NewService(NewHTTPSource(exec, api.URL())), api
}

func TestService_FetchProducts(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name           string
		params         ProductQueryParams
		wantLen        int
		wantTotal      int
		wantTotalPages int
		wantPage       int
	}{
		{
			name:           "search phone",
			params:         ProductQueryParams{Search: "phone", Category: "All", Page: 1, Limit: 6},
			wantLen:        6,
			wantTotal:      8,
			wantTotalPages: 2,
			wantPage:       1,
		},
		{
			name:           "search phone second page",
			params:         ProductQueryParams{Search: "phone", Page: 2, Limit: 6},
			wantLen:        2,
			wantTotal:      8,
			wantTotalPages: 2,
			wantPage:       2,
		},
		{
			name:           "defaults",
			params:         ProductQueryParams{},
			wantLen:        6,
			wantTotal:      14,
			wantTotalPages: 3,
			wantPage:       1,
		},
		{
			name:           "category filter",
			params:         ProductQueryParams{Category: "laptops", Page: 1, Limit: 2},
			wantLen:        2,
			wantTotal:      3,
			wantTotalPages: 2,
			wantPage:       1,
		},
		{
			name:           "no matches",
			params:         ProductQueryParams{Search: "submarine"},
			wantLen:        0,
			wantTotal:      0,
			wantTotalPages: 0,
			wantPage:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.FetchProducts(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("FetchProducts() failed: %v", err)
			}
			if len(page.Products) != tt.wantLen {
				t.Errorf("expected %d products, got %d", tt.wantLen, len(page.Products))
			}
			if page.TotalCount != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, page.TotalCount)
			}
			if page.TotalPages != tt.wantTotalPages {
				t.Errorf("expected %d pages, got %d", tt.wantTotalPages, page.TotalPages)
			}
			if page.CurrentPage != tt.wantPage {
				t.Errorf("expected current page %d, got %d", tt.wantPage, page.CurrentPage)
			}
		})
	}
}

func TestService_FetchProducts_Normalizes(t *testing.T) {
	svc, _ := newTestService(t)

	page, err := svc.FetchProducts(context.Background(), ProductQueryParams{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("FetchProducts() failed: %v", err)
	}

	p := page.Products[0]
	if p.Name != "iPhone 9" {
		t.Errorf("expected name from title, got %q", p.Name)
	}
	if !strings.HasSuffix(p.Image, "/1/thumbnail.png") {
		t.Errorf("expected thumbnail as image, got %q", p.Image)
	}
	if !p.Featured {
		t.Error("rating 4.69 should be featured")
	}
}

func TestService_FetchProducts_Failure(t *testing.T) {
	svc, api := newTestService(t)
	api.FailNext(2, http.StatusInternalServerError)

	_, err := svc.FetchProducts(context.Background(), ProductQueryParams{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Errorf("expected external category, got %v", err)
	}
	if got := Message(err); got != MsgProductsFailed {
		t.Errorf("expected %q, got %q", MsgProductsFailed, got)
	}

	var exhausted *request.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Errorf("expected wrapped *request.ExhaustedError, got %v", err)
	}
	if got := api.Requests("/products"); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestService_FetchProducts_InvalidParams(t *testing.T) {
	svc, api := newTestService(t)

	tests := []struct {
		name   string
		params ProductQueryParams
	}{
		{"negative page", ProductQueryParams{Page: -1}},
		{"negative limit", ProductQueryParams{Limit: -6}},
		{"limit too large", ProductQueryParams{Limit: MaxPageSize + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FetchProducts(context.Background(), tt.params)
			if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
				t.Errorf("expected bad input error, got %v", err)
			}
		})
	}

	if got := api.TotalRequests(); got != 0 {
		t.Errorf("invalid params must not reach the network, got %d requests", got)
	}
}

func TestService_FetchProducts_PageOutOfRange(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		params  ProductQueryParams
		wantErr bool
	}{
		{"last page", ProductQueryParams{Page: 3, Limit: 6}, false},
		{"one past the end", ProductQueryParams{Page: 4, Limit: 6}, true},
		{"far past the end", ProductQueryParams{Page: 9, Limit: 6}, true},
		{"empty result", ProductQueryParams{Page: 2, Search: "submarine"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.FetchProducts(context.Background(), tt.params)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("FetchProducts() failed: %v", err)
				}
				if page.TotalPages > 0 && page.CurrentPage > page.TotalPages {
					t.Errorf("current page %d beyond %d pages", page.CurrentPage, page.TotalPages)
				}
				return
			}

			if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
				t.Fatalf("expected bad input error, got %v", err)
			}
			if got := Message(err); got != MsgPageOutOfRange {
				t.Errorf("expected %q, got %q", MsgPageOutOfRange, got)
			}
			var e *goerrors.Error
			if errors.As(err, &e) && e.TextCode != TextCodePageOutOfRange {
				t.Errorf("expected text code %s, got %s", TextCodePageOutOfRange, e.TextCode)
			}
		})
	}
}

func TestService_FetchCategories(t *testing.T) {
	svc, _ := newTestService(t)

	categories, err := svc.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories() failed: %v", err)
	}

	want := []string{"All", "smartphones", "mobile-accessories", "laptops", "fragrances"}
	if strings.Join(categories, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, categories)
	}
}

func TestService_FetchCategories_Fallback(t *testing.T) {
	svc, api := newTestService(t)
	api.FailNext(2, http.StatusServiceUnavailable)

	categories, err := svc.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("expected fallback, got error %v", err)
	}
	if strings.Join(categories, ",") != "All,Electronics,Accessories" {
		t.Errorf("unexpected fallback %v", categories)
	}

	categories[0] = "mutated"
	if FallbackCategories[0] != AllCategories {
		t.Error("fallback slice must not be shared with callers")
	}
}

func TestService_FetchPosts(t *testing.T) {
	svc, api := newTestService(t)

	tests := []struct {
		name      string
		params    PostQueryParams
		wantLen   int
		wantTotal int
		wantPath  string
	}{
		{"defaults", PostQueryParams{}, 20, 25, "/posts"},
		{"tag filter", PostQueryParams{Tag: "history"}, 10, 10, "/posts/tag/history"},
		{"all tag means no filter", PostQueryParams{Tag: "All", Limit: 5}, 5, 25, "/posts"},
		{"skip", PostQueryParams{Skip: 20}, 5, 25, "/posts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := api.Requests(tt.wantPath)

			page, err := svc.FetchPosts(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("FetchPosts() failed: %v", err)
			}
			if len(page.Posts) != tt.wantLen {
				t.Errorf("expected %d posts, got %d", tt.wantLen, len(page.Posts))
			}
			if page.Total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, page.Total)
			}
			if api.Requests(tt.wantPath) != before+1 {
				t.Errorf("expected a request to %s", tt.wantPath)
			}
		})
	}
}

func TestService_FetchPosts_DerivedFields(t *testing.T) {
	svc, _ := newTestService(t)

	page, err := svc.FetchPosts(context.Background(), PostQueryParams{Limit: 1})
	if err != nil {
		t.Fatalf("FetchPosts() failed: %v", err)
	}

	p := page.Posts[0]
	if p.Likes != 101 || p.Dislikes != 1 {
		t.Errorf("expected reactions 101/1, got %d/%d", p.Likes, p.Dislikes)
	}
	if p.Author != AuthorName(101) {
		t.Errorf("unexpected author %q", p.Author)
	}
	if p.PublishedOn != "Jan 2, 2024" {
		t.Errorf("unexpected publication date %q", p.PublishedOn)
	}
	if p.Image != PostImage(1) {
		t.Errorf("unexpected image %q", p.Image)
	}
}

func TestService_FetchPosts_Failure(t *testing.T) {
	svc, api := newTestService(t)
	api.FailNext(2, http.StatusBadGateway)

	_, err := svc.FetchPosts(context.Background(), PostQueryParams{})
	if got := Message(err); got != MsgPostsFailed {
		t.Errorf("expected %q, got %q", MsgPostsFailed, got)
	}
}

func TestService_FetchPostTags(t *testing.T) {
	svc, _ := newTestService(t)

	tags, err := svc.FetchPostTags(context.Background())
	if err != nil {
		t.Fatalf("FetchPostTags() failed: %v", err)
	}
	if len(tags) != 10 || tags[0] != "american" {
		t.Errorf("unexpected tags %v", tags)
	}
}

func TestService_CancelledContext(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FetchProducts(ctx, ProductQueryParams{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
