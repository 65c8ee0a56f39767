package repository

import (
	"context"

	"github.com/martijn/moviereview/internal/core/domain"
)

// UserRepository persists user credentials. Create must fail with
// ErrDuplicate when the username is taken; implementations back this with
// a uniqueness constraint rather than a prior lookup.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
}
