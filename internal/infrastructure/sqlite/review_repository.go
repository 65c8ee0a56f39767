package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
)

const reviewColumns = `id, movie_title, year_released, director, age_rating, run_time,
	genre, description, user_rating, image, author, created_at, updated_at`

// searchColumns are matched by Search, mirroring the Mongo text index
var searchColumns = []string{"movie_title", "director", "genre", "description"}

type reviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	id := uuid.New().String()

	query := `
		INSERT INTO review (id, seq, movie_title, year_released, director, age_rating, run_time,
			genre, description, user_rating, image, author, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM review), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		id,
		review.MovieTitle,
		review.YearReleased,
		review.Director,
		review.AgeRating,
		review.RunTime,
		review.Genre,
		review.Description,
		review.UserRating,
		review.Image,
		review.Author,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	review.ID = id
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM review WHERE id = ?`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, id string, fields domain.ReviewFields) error {
	query := `
		UPDATE review
		SET movie_title = ?, year_released = ?, director = ?, age_rating = ?, run_time = ?,
			genre = ?, description = ?, user_rating = ?, image = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		fields.MovieTitle,
		fields.YearReleased,
		fields.Director,
		fields.AgeRating,
		fields.RunTime,
		fields.Genre,
		fields.Description,
		fields.UserRating,
		fields.Image,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// Delete is unconditional; removing an unknown id is not an error
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM review WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM review ORDER BY seq`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Search matches reviews containing any of the query terms in one of the
// searchable columns, case-insensitively.
func (r *reviewRepository) Search(ctx context.Context, query string) ([]*domain.Review, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []*domain.Review{}, nil
	}

	clauses := make([]string, 0, len(terms)*len(searchColumns))
	args := make([]interface{}, 0, len(terms)*len(searchColumns))
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		for _, col := range searchColumns {
			clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
			args = append(args, pattern)
		}
	}

	sqlQuery := `SELECT ` + reviewColumns + ` FROM review WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY seq`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to search reviews: %w", err)
	}
	return reviews, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
