package domain

import "time"

// Post is a single blog entry.
type Post struct {
	ID        int64
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortDirection orders posts by creation time.
type SortDirection string

const (
	// SortNone keeps the store-native order.
	SortNone   SortDirection = ""
	SortNewest SortDirection = "newest"
	SortOldest SortDirection = "oldest"
)

// ParseSort maps a query value to a SortDirection. Unknown values yield SortNone.
func ParseSort(v string) SortDirection {
	switch SortDirection(v) {
	case SortNewest:
		return SortNewest
	case SortOldest:
		return SortOldest
	default:
		return SortNone
	}
}

// PostPage is one window of the post listing.
type PostPage struct {
	Items       []Post
	Page        int
	PageSize    int
	Total       int64
	HasNextPage bool
}

// NextPage returns the following page number, or 0 when there is none.
func (p PostPage) NextPage() int {
	if !p.HasNextPage {
		return 0
	}
	return p.Page + 1
}
