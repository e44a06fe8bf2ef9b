package catalog

import (
	"bytes"
	"math"
	"strings"

	json "github.com/goccy/go-json"
)

// FeaturedRating is the rating above which a product is featured.
const FeaturedRating = 4.5

// Product is the canonical product schema shared by every consumer.
type Product struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Image              string   `json:"image"`
	Images             []string `json:"images"`
	Featured           bool     `json:"featured"`
}

// ProductPage is one page of products plus pagination metadata.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalCount  int       `json:"totalCount"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// Post is a news article. Author, PublishedOn and Image are derived
// from ID and UserID.
type Post struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Tags        []string `json:"tags"`
	Views       int      `json:"views"`
	Likes       int      `json:"likes"`
	Dislikes    int      `json:"dislikes"`
	UserID      int      `json:"userId"`
	Author      string   `json:"author"`
	PublishedOn string   `json:"publishedOn"`
	Image       string   `json:"image"`
}

// PostPage is a list of posts plus the upstream total.
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
}

type apiProduct struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Name               string   `json:"name"`
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

type apiProductList struct {
	Products []apiProduct `json:"products"`
	Total    int          `json:"total"`
	Skip     int          `json:"skip"`
	Limit    int          `json:"limit"`
}

type apiReactions struct {
	Likes    int
	Dislikes int
}

// UnmarshalJSON accepts both the object form and the older bare count.
func (r *apiReactions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var likes float64
		if err := json.Unmarshal(data, &likes); err != nil {
			return err
		}
		r.Likes = int(likes)
		return nil
	}

	var obj struct {
		Likes    int `json:"likes"`
		Dislikes int `json:"dislikes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Likes, r.Dislikes = obj.Likes, obj.Dislikes
	return nil
}

type apiPost struct {
	ID        int          `json:"id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Tags      []string     `json:"tags"`
	Reactions apiReactions `json:"reactions"`
	Views     int          `json:"views"`
	UserID    int          `json:"userId"`
}

type apiPostList struct {
	Posts []apiPost `json:"posts"`
	Total int       `json:"total"`
	Skip  int       `json:"skip"`
	Limit int       `json:"limit"`
}

// apiLabel is a category or tag, sent either as a bare string or as
// {"slug": ..., "name": ...}.
type apiLabel struct {
	Slug string
	Name string
}

func (l *apiLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l.Slug, l.Name = s, s
		return nil
	}

	var obj struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.Slug, l.Name = obj.Slug, obj.Name
	return nil
}

// value is the identifier used in category and tag path segments.
func (l apiLabel) value() string {
	if l.Slug != "" {
		return l.Slug
	}
	return l.Name
}

func normalizeProduct(p apiProduct) Product {
	name := p.Title
	if name == "" {
		name = p.Name
	}

	images := p.Images
	if images == nil {
		images = []string{}
	}

	image := p.Thumbnail
	if image == "" && len(images) > 0 {
		image = images[0]
	}

	return Product{
		ID:                 p.ID,
		Name:               name,
		Description:        p.Description,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Rating:             p.Rating,
		Stock:              p.Stock,
		Brand:              p.Brand,
		Category:           p.Category,
		Image:              image,
		Images:             images,
		Featured:           p.Rating > FeaturedRating,
	}
}

func normalizePost(p apiPost) Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return Post{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Tags:        tags,
		Views:       p.Views,
		Likes:       p.Reactions.Likes,
		Dislikes:    p.Reactions.Dislikes,
		UserID:      p.UserID,
		Author:      AuthorName(p.UserID),
		PublishedOn: PublishedOn(p.ID),
		Image:       PostImage(p.ID),
	}
}

func normalizeLabels(labels []apiLabel) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		v := strings.TrimSpace(l.value())
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// TotalPages returns ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
