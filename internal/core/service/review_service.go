package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
	"go.uber.org/zap"
)

type ReviewService struct {
	reviewRepo repository.ReviewRepository
	log        *zap.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		log:        log,
	}
}

// List returns every review in store order
func (s *ReviewService) List(ctx context.Context) ([]*domain.Review, error) {
	return s.reviewRepo.List(ctx)
}

// Get returns the review or repository.ErrNotFound
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviewRepo.FindByID(ctx, id)
}

// Create stores a new review written by author. The author always comes
// from the caller's session, never from submitted fields.
func (s *ReviewService) Create(ctx context.Context, fields domain.ReviewFields, author string) (*domain.Review, error) {
	if author == "" {
		return nil, ErrForbidden
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	review := domain.NewReview(fields, author)
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.log.Info("review created",
		zap.String("id", review.ID),
		zap.String("author", author),
		zap.String("movie_title", fields.MovieTitle),
	)
	return review, nil
}

// Update replaces the editable fields of a review owned by actor
func (s *ReviewService) Update(ctx context.Context, id string, fields domain.ReviewFields, actor string) (*domain.Review, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	s.log.Info("review updated", zap.String("id", id), zap.String("actor", actor))
	return s.reviewRepo.FindByID(ctx, id)
}

// Delete removes a review owned by actor
func (s *ReviewService) Delete(ctx context.Context, id, actor string) error {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("review deleted", zap.String("id", id), zap.String("actor", actor))
	return nil
}

// Search runs a text search. A blank query matches every review.
func (s *ReviewService) Search(ctx context.Context, query string) ([]*domain.Review, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.reviewRepo.List(ctx)
	}
	return s.reviewRepo.Search(ctx, query)
}

// CanModify reports whether actor may edit or delete the review
func (s *ReviewService) CanModify(review *domain.Review, actor string) bool {
	return review != nil && review.OwnedBy(actor)
}

func (s *ReviewService) authorize(ctx context.Context, id, actor string) (*domain.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.OwnedBy(actor) {
		return nil, ErrForbidden
	}
	return review, nil
}

func validateFields(f domain.ReviewFields) error {
	if strings.TrimSpace(f.MovieTitle) == "" {
		return fmt.Errorf("%w: movie title is required", ErrInvalidInput)
	}
	if f.YearReleased < MinYearReleased || f.YearReleased > MaxYearReleased {
		return fmt.Errorf("%w: year released must be between %d and %d", ErrInvalidInput, MinYearReleased, MaxYearReleased)
	}
	if f.RunTime < MinRunTime || f.RunTime > MaxRunTime {
		return fmt.Errorf("%w: run time must be between %d and %d minutes", ErrInvalidInput, MinRunTime, MaxRunTime)
	}
	if f.UserRating < MinUserRating || f.UserRating > MaxUserRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinUserRating, MaxUserRating)
	}
	return nil
}

const (
	MinYearReleased = 1870
	MaxYearReleased = 2100
	MinRunTime      = 1
	MaxRunTime      = 1000
	MinUserRating   = 0
	MaxUserRating   = 10
)
