package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("insert user %s: %w", user.Username, repository.ErrDuplicate)
	}
	r.users[user.Username] = *user
	return nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.Username] = *user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	nextID  int
	order   []string
	reviews map[string]domain.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[string]domain.Review)}
}

func (r *memReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	review.ID = fmt.Sprintf("r%d", r.nextID)
	r.reviews[review.ID] = *review
	r.order = append(r.order, review.ID)
	return nil
}

func (r *memReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rv, nil
}

func (r *memReviewRepo) Update(ctx context.Context, id string, fields domain.ReviewFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	rv.ReviewFields = fields
	r.reviews[id] = rv
	return nil
}

func (r *memReviewRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memReviewRepo) List(ctx context.Context) ([]*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Review, 0, len(r.order))
	for _, id := range r.order {
		rv := r.reviews[id]
		out = append(out, &rv)
	}
	return out, nil
}

func (r *memReviewRepo) Search(ctx context.Context, query string) ([]*domain.Review, error) {
	all, _ := r.List(ctx)
	var out []*domain.Review
	for _, rv := range all {
		if strings.Contains(strings.ToLower(rv.MovieTitle), strings.ToLower(query)) {
			out = append(out, rv)
		}
	}
	return out, nil
}
