package repository

import (
	"context"

	"inkwell/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Implementations return domain.ErrConflict on username/email uniqueness
// violations and domain.ErrNotFound when a referenced user is absent.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}
