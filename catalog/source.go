package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-storefront-cache/request"
)

// Source loads catalog data. Implementations return normalized values
// and raw errors; Service turns those into user-facing failures.
type Source interface {
	Products(ctx context.Context, params ProductQueryParams) (ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
	Posts(ctx context.Context, params PostQueryParams) (PostPage, error)
	PostTags(ctx context.Context) ([]string, error)
}

// Requester performs a GET request. *request.Executor satisfies it.
type Requester interface {
	Execute(ctx context.Context, url string, opts ...request.Option) (*request.Response, error)
}

// HTTPSource reads the catalog from a DummyJSON-shaped REST API.
type HTTPSource struct {
	requester Requester
	baseURL   string
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(requester Requester, baseURL string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{requester: requester, baseURL: baseURL}
}

// Products fetches one page of products. params must already be normalized.
func (s *HTTPSource) Products(ctx context.Context, params ProductQueryParams) (ProductPage, error) {
	var body apiProductList
	if err := s.get(ctx, ProductsURL(s.baseURL, params), &body); err != nil {
		return ProductPage{}, err
	}

	products := make([]Product, 0, len(body.Products))
	for _, p := range body.Products {
		products = append(products, normalizeProduct(p))
	}

	return ProductPage{
		Products:    products,
		TotalCount:  body.Total,
		TotalPages:  TotalPages(body.Total, params.Limit),
		CurrentPage: params.Page,
	}, nil
}

// Categories fetches the category identifiers, without "All".
func (s *HTTPSource) Categories(ctx context.Context) ([]string, error) {
	var labels []apiLabel
	if err := s.get(ctx, CategoriesURL(s.baseURL), &labels); err != nil {
		return nil, err
	}
	return normalizeLabels(labels), nil
}

// Posts fetches a slice of posts. params must already be normalized.
func (s *HTTPSource) Posts(ctx context.Context, params PostQueryParams) (PostPage, error) {
	var body apiPostList
	if err := s.get(ctx, PostsURL(s.baseURL, params), &body); err != nil {
		return PostPage{}, err
	}

	posts := make([]Post, 0, len(body.Posts))
	for _, p := range body.Posts {
		posts = append(posts, normalizePost(p))
	}

	return PostPage{Posts: posts, Total: body.Total}, nil
}

// PostTags fetches the post tag identifiers.
func (s *HTTPSource) PostTags(ctx context.Context) ([]string, error) {
	var labels []apiLabel
	if err := s.get(ctx, PostTagsURL(s.baseURL), &labels); err != nil {
		return nil, err
	}
	return normalizeLabels(labels), nil
}

func (s *HTTPSource) get(ctx context.Context, url string, out any) error {
	resp, err := s.requester.Execute(ctx, url)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
