package catalog

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// TextCodeFetchFailed marks every user-facing fetch failure.
	TextCodeFetchFailed = "FETCH_FAILED"
	// TextCodeInvalidParams marks rejected query parameters.
	TextCodeInvalidParams = "INVALID_PARAMS"
	// TextCodePageOutOfRange marks a page past the last one.
	TextCodePageOutOfRange = "PAGE_OUT_OF_RANGE"

	MsgProductsFailed = "Failed to fetch products. Please try again later."
	MsgPostsFailed    = "Failed to fetch posts. Please try again later."
	MsgTagsFailed     = "Failed to fetch post tags. Please try again later."
	MsgPageOutOfRange = "The requested page does not exist."
)

// FallbackCategories is served when the category listing is unavailable.
var FallbackCategories = []string{AllCategories, "Electronics", "Accessories"}

// Service is the query API used by the store and other consumers.
type Service struct {
	source Source
	logger zerolog.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.Component(logger, "catalog")
	}
}

// NewService creates a Service reading from source.
func NewService(source Source, opts ...ServiceOption) *Service {
	s := &Service{source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchProducts returns one page of products. Zero params fields take
// their defaults. A page past the last one is a bad_input error, so
// CurrentPage always lies in [1, TotalPages] when there are results.
func (s *Service) FetchProducts(ctx context.Context, params ProductQueryParams) (ProductPage, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return ProductPage{}, invalidParams(err)
	}

	s.logger.Debug().
		Int("page", params.Page).
		Int("limit", params.Limit).
		Str("search", params.Search).
		Str("category", params.Category).
		Msg("fetching products")

	page, err := s.source.Products(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching products")
		return ProductPage{}, fetchFailed(err, MsgProductsFailed)
	}
	if page.TotalPages > 0 && page.CurrentPage > page.TotalPages {
		s.logger.Warn().
			Int("page", page.CurrentPage).
			Int("total_pages", page.TotalPages).
			Msg("requested page out of range")
		return ProductPage{}, pageOutOfRange(page)
	}
	return page, nil
}

// FetchCategories returns the category list with "All" first. When the
// listing fails it logs a warning and returns FallbackCategories.
func (s *Service) FetchCategories(ctx context.Context) ([]string, error) {
	categories, err := s.source.Categories(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("error fetching categories, using fallback")
		return append([]string(nil), FallbackCategories...), nil
	}

	out := make([]string, 0, len(categories)+1)
	out = append(out, AllCategories)
	for _, c := range categories {
		if c != AllCategories {
			out = append(out, c)
		}
	}
	return out, nil
}

// FetchPosts returns a slice of posts. Zero params fields take their
// defaults.
func (s *Service) FetchPosts(ctx context.Context, params PostQueryParams) (PostPage, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return PostPage{}, invalidParams(err)
	}

	page, err := s.source.Posts(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching posts")
		return PostPage{}, fetchFailed(err, MsgPostsFailed)
	}
	return page, nil
}

// FetchPostTags returns the post tags.
func (s *Service) FetchPostTags(ctx context.Context) ([]string, error) {
	tags, err := s.source.PostTags(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching post tags")
		return nil, fetchFailed(err, MsgTagsFailed)
	}
	return tags, nil
}

func fetchFailed(err error, msg string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, msg).
		WithTextCode(TextCodeFetchFailed)
}

func invalidParams(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid query parameters").
		WithTextCode(TextCodeInvalidParams)
}

func pageOutOfRange(page ProductPage) error {
	return goerrors.New(MsgPageOutOfRange, goerrors.CategoryBadInput).
		WithTextCode(TextCodePageOutOfRange).
		WithMetadata(map[string]any{
			"page":        page.CurrentPage,
			"total_pages": page.TotalPages,
		})
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *goerrors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
