package catalog

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// AllCategories disables the category filter.
	AllCategories = "All"
	// AllTags disables the tag filter.
	AllTags = "All"

	DefaultPage      = 1
	DefaultPageSize  = 6
	DefaultPostLimit = 20

	// MaxPageSize bounds Limit for both products and posts.
	MaxPageSize = 100
)

// ProductQueryParams selects a page of products.
type ProductQueryParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Search   string `json:"search"`
	Category string `json:"category"`
}

// DefaultProductQueryParams returns page 1 of 6 with no filters.
func DefaultProductQueryParams() ProductQueryParams {
	return ProductQueryParams{
		Page:     DefaultPage,
		Limit:    DefaultPageSize,
		Category: AllCategories,
	}
}

// Normalize fills zero fields with defaults and trims the search term.
func (p ProductQueryParams) Normalize() ProductQueryParams {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = AllCategories
	}
	return p
}

// Validate checks page and limit bounds.
func (p ProductQueryParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// Skip is the number of products before the requested page.
func (p ProductQueryParams) Skip() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PostQueryParams selects a slice of posts.
type PostQueryParams struct {
	Limit int    `json:"limit"`
	Skip  int    `json:"skip"`
	Tag   string `json:"tag"`
}

// DefaultPostQueryParams returns the first 20 posts with no tag filter.
func DefaultPostQueryParams() PostQueryParams {
	return PostQueryParams{Limit: DefaultPostLimit}
}

// Normalize fills zero fields with defaults.
func (p PostQueryParams) Normalize() PostQueryParams {
	if p.Limit == 0 {
		p.Limit = DefaultPostLimit
	}
	p.Tag = strings.TrimSpace(p.Tag)
	return p
}

// Validate checks limit and skip bounds.
func (p PostQueryParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&p.Skip, validation.Min(0)),
	)
}
