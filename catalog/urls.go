package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public DummyJSON API.
const DefaultBaseURL = "https://dummyjson.com"

// ProductsURL builds the listing URL for p. Search takes precedence over
// the category filter.
func ProductsURL(baseURL string, p ProductQueryParams) string {
	base := strings.TrimRight(baseURL, "/") + "/products"

	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("skip", strconv.Itoa(p.Skip()))

	switch {
	case p.Search != "":
		q.Set("q", p.Search)
		return base + "/search?" + q.Encode()
	case p.Category != "" && p.Category != AllCategories:
		return base + "/category/" + url.PathEscape(p.Category) + "?" + q.Encode()
	default:
		return base + "?" + q.Encode()
	}
}

// CategoriesURL is the product category listing.
func CategoriesURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/products/categories"
}

// PostsURL builds the post listing URL for p.
func PostsURL(baseURL string, p PostQueryParams) string {
	base := strings.TrimRight(baseURL, "/") + "/posts"

	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("skip", strconv.Itoa(p.Skip))

	if p.Tag != "" && p.Tag != AllTags {
		return base + "/tag/" + url.PathEscape(p.Tag) + "?" + q.Encode()
	}
	return base + "?" + q.Encode()
}

// PostTagsURL is the post tag listing.
func PostTagsURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/posts/tags"
}
