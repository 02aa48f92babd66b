package repository

import (
	"context"

	"inkwell/internal/domain"
)

// PostListOptions selects a window of posts.
type PostListOptions struct {
	Sort   domain.SortDirection
	Offset int
	Limit  int // 0 means no limit
}

// PostRepository defines persistence operations for Post entities.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// Delete removes a post. Deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts PostListOptions) ([]domain.Post, error)
	Count(ctx context.Context) (int64, error)
	// Search matches term case-insensitively against title or body, in store order.
	// The term must already be sanitized; an empty term matches every post.
	Search(ctx context.Context, term string) ([]domain.Post, error)
}
