package testsupport

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

//go:embed testdata/*.json
var fixtureFS embed.FS

// APIProduct is a product as the DummyJSON API serves it.
type APIProduct struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// APIPost is a post as the DummyJSON API serves it.
type APIPost struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Reactions struct {
		Likes    int `json:"likes"`
		Dislikes int `json:"dislikes"`
	} `json:"reactions"`
	Views  int `json:"views"`
	UserID int `json:"userId"`
}

// APICategory is a category listing entry.
type APICategory struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Products returns the embedded product fixtures.
func Products(t testing.TB) []APIProduct {
	t.Helper()
	var out []APIProduct
	loadEmbedded(t, "products.json", &out)
	return out
}

// Posts returns the embedded post fixtures.
func Posts(t testing.TB) []APIPost {
	t.Helper()
	var out []APIPost
	loadEmbedded(t, "posts.json", &out)
	return out
}

// Categories returns the embedded category fixtures.
func Categories(t testing.TB) []APICategory {
	t.Helper()
	var out []APICategory
	loadEmbedded(t, "categories.json", &out)
	return out
}

// Tags returns the embedded post tag fixtures.
func Tags(t testing.TB) []string {
	t.Helper()
	var out []string
	loadEmbedded(t, "tags.json", &out)
	return out
}

func loadEmbedded(t testing.TB, name string, dest any) {
	t.Helper()
	data, err := fixtureFS.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to read embedded fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal embedded fixture %s: %v", name, err)
	}
}

// FakeAPI is an in-process DummyJSON stand-in backed by the embedded
// fixtures. It supports search, category and tag filters, limit/skip
// pagination, failure injection and request counting.
type FakeAPI struct {
	server     *httptest.Server
	products   []APIProduct
	posts      []APIPost
	categories []APICategory
	tags       []string

	mu         sync.Mutex
	requests   map[string]int
	failures   int
	failStatus int
	delay      time.Duration
}

// NewFakeAPI starts a FakeAPI that is shut down when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		products:   Products(t),
		posts:      Posts(t),
		categories: Categories(t),
		tags:       Tags(t),
		requests:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", f.handleProducts)
	mux.HandleFunc("GET /products/search", f.handleProducts)
	mux.HandleFunc("GET /products/category/{slug}", f.handleProducts)
	mux.HandleFunc("GET /products/categories", f.handleCategories)
	mux.HandleFunc("GET /posts", f.handlePosts)
	mux.HandleFunc("GET /posts/tag/{tag}", f.handlePosts)
	mux.HandleFunc("GET /posts/tags", f.handleTags)

	f.server = httptest.NewServer(f.intercept(mux))
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL of the fake API.
func (f *FakeAPI) URL() string {
	return f.server.URL
}

// FailNext makes the next n requests answer with status.
func (f *FakeAPI) FailNext(n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	f.failStatus = status
}

// SetDelay delays every response by d, or until the client gives up.
func (f *FakeAPI) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Requests returns how many requests hit path.
func (f *FakeAPI) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

// TotalRequests returns the number of requests served so far.
func (f *FakeAPI) TotalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.requests {
		total += n
	}
	return total
}

func (f *FakeAPI) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests[r.URL.Path]++
		delay := f.delay
		fail := 0
		if f.failures > 0 {
			f.failures--
			fail = f.failStatus
		}
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if fail != 0 {
			http.Error(w, http.StatusText(fail), fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))
	slug := r.PathValue("slug")

	matched := make([]APIProduct, 0, len(f.products))
	for _, p := range f.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		if slug != "" && p.Category != slug {
			continue
		}
		matched = append(matched, p)
	}

	limit, skip := paging(r, 30)
	writeJSON(w, map[string]any{
		"products": window(matched, skip, limit),
		"total":    len(matched),
		"skip":     skip,
		"limit":    limit,
	})
}

func (f *FakeAPI) handlePosts(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")

	matched := make([]APIPost, 0, len(f.posts))
	for _, p := range f.posts {
		if tag != "" && !containsString(p.Tags, tag) {
			continue
		}
		matched = append(matched, p)
	}

	limit, skip := paging(r, 30)
	writeJSON(w, map[string]any{
		"posts": window(matched, skip, limit),
		"total": len(matched),
		"skip":  skip,
		"limit": limit,
	})
}

func (f *FakeAPI) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, f.categories)
}

func (f *FakeAPI) handleTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, f.tags)
}

func paging(r *http.Request, defaultLimit int) (limit, skip int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v > 0 {
		skip = v
	}
	return limit, skip
}

func window[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
