package repository

import (
	"context"

	"github.com/martijn/moviereview/internal/core/domain"
)

type ReviewRepository interface {
	// Create stores the review and sets its ID
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	// Update replaces the editable fields of the review with the given ID.
	// ID, author and creation time are left untouched.
	Update(ctx context.Context, id string, fields domain.ReviewFields) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Review, error)
	Search(ctx context.Context, query string) ([]*domain.Review, error)
}
