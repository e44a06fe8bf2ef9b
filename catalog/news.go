package catalog

import "time"

var authors = []string{
	"Sarah Johnson",
	"Mike Chen",
	"Emma Davis",
	"David Wilson",
	"Alex Rivera",
	"Lisa Park",
}

var postImages = []string{
	"https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1499750310107-5fef28a66643?w=800&h=400&fit=crop",
	"https://images.unsplash.com/photo-1486312338219-ce68e2c6b3ca?w=800&h=400&fit=crop",
}

var publishEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// AuthorName maps a user id onto a display name.
func AuthorName(userID int) string {
	return authors[mod(userID, len(authors))]
}

// PublishedOn returns a stable publication date for a post, formatted
// like "Jan 2, 2024".
func PublishedOn(postID int) string {
	return publishEpoch.AddDate(0, 0, mod(postID, 30)).Format("Jan 2, 2006")
}

// PostImage returns the cover image for a post.
func PostImage(postID int) string {
	return postImages[mod(postID, len(postImages))]
}

func mod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}
