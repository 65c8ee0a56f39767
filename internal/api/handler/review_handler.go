package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/dto"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
	"github.com/martijn/moviereview/internal/core/service"
	"github.com/martijn/moviereview/internal/metrics"
)

const (
	msgReviewAdded    = "Review Added!"
	msgReviewUpdated  = "Review Updated!"
	msgReviewDeleted  = "Review Deleted!"
	msgReviewNotFound = "Review not found"
	msgNotOwner       = "You can only modify your own reviews"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	metrics       *metrics.Metrics
}

func NewReviewHandler(reviewService *service.ReviewService, m *metrics.Metrics) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		metrics:       m,
	}
}

// Home handles GET / and GET /home
func (h *ReviewHandler) Home(c *gin.Context) (*Response, error) {
	reviews, err := h.reviewService.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return render(view.Home, gin.H{"Reviews": reviews}), nil
}

// Details handles /movie_details/:id. An unknown id renders the page
// without a review.
func (h *ReviewHandler) Details(c *gin.Context) (*Response, error) {
	review, err := h.reviewService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return render(view.Movie, gin.H{"Title": "Not Found", "Review": (*domain.Review)(nil)}).
			WithStatus(http.StatusNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	return render(view.Movie, gin.H{
		"Title":     review.MovieTitle,
		"Review":    review,
		"CanModify": h.reviewService.CanModify(review, session.CurrentUser(c)),
	}), nil
}

// NewReviewPage handles GET /new_reviews
func (h *ReviewHandler) NewReviewPage(c *gin.Context) (*Response, error) {
	return render(view.NewReview, gin.H{"Title": "New Review", "Form": dto.ReviewForm{}}), nil
}

// CreateReview handles POST /new_reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) (*Response, error) {
	var form dto.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		return render(view.NewReview, gin.H{"Title": "New Review", "Form": form}, dto.ValidationMessage(err)).
			WithStatus(http.StatusBadRequest), nil
	}

	_, err := h.reviewService.Create(c.Request.Context(), form.Fields(), session.CurrentUser(c))
	if errors.Is(err, service.ErrInvalidInput) {
		return render(view.NewReview, gin.H{"Title": "New Review", "Form": form}, inputMessage(err)).
			WithStatus(http.StatusBadRequest), nil
	}
	if err != nil {
		return nil, err
	}

	h.metrics.ReviewChanged("create")
	return redirect("/home", msgReviewAdded), nil
}

// EditReviewPage handles GET /edit_review/:id
func (h *ReviewHandler) EditReviewPage(c *gin.Context) (*Response, error) {
	review, err := h.reviewService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return render(view.EditReview, gin.H{"Title": "Not Found", "Review": (*domain.Review)(nil)}).
			WithStatus(http.StatusNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	if !h.reviewService.CanModify(review, session.CurrentUser(c)) {
		return redirect("/home", msgNotOwner), nil
	}

	return render(view.EditReview, gin.H{
		"Title":  "Edit " + review.MovieTitle,
		"Review": review,
		"Form":   formFromReview(review),
	}), nil
}

// UpdateReview handles POST /edit_review/:id and re-renders the edit page
func (h *ReviewHandler) UpdateReview(c *gin.Context) (*Response, error) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var form dto.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		return h.editFormError(c, id, form, dto.ValidationMessage(err))
	}

	review, err := h.reviewService.Update(ctx, id, form.Fields(), session.CurrentUser(c))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return redirect("/home", msgReviewNotFound), nil
	case errors.Is(err, service.ErrForbidden):
		return redirect("/home", msgNotOwner), nil
	case errors.Is(err, service.ErrInvalidInput):
		return h.editFormError(c, id, form, inputMessage(err))
	case err != nil:
		return nil, err
	}

	h.metrics.ReviewChanged("update")
	return render(view.EditReview, gin.H{
		"Title":  "Edit " + review.MovieTitle,
		"Review": review,
		"Form":   formFromReview(review),
	}, msgReviewUpdated), nil
}

// DeleteReview handles /delete_review/:id. Deleting a review that is
// already gone reports success.
func (h *ReviewHandler) DeleteReview(c *gin.Context) (*Response, error) {
	err := h.reviewService.Delete(c.Request.Context(), c.Param("id"), session.CurrentUser(c))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return redirect("/home", msgReviewDeleted), nil
	case errors.Is(err, service.ErrForbidden):
		return redirect("/home", msgNotOwner), nil
	case err != nil:
		return nil, err
	}

	h.metrics.ReviewChanged("delete")
	return redirect("/home", msgReviewDeleted), nil
}

// Search handles /search_movie, reading the query from the form or URL
func (h *ReviewHandler) Search(c *gin.Context) (*Response, error) {
	var form dto.SearchForm
	_ = c.ShouldBind(&form)

	reviews, err := h.reviewService.Search(c.Request.Context(), form.Data)
	if err != nil {
		return nil, err
	}

	return render(view.Home, gin.H{
		"Title":   "Search",
		"Query":   form.Data,
		"Reviews": reviews,
	}), nil
}

func (h *ReviewHandler) editFormError(c *gin.Context, id string, form dto.ReviewForm, msg string) (*Response, error) {
	review, err := h.reviewService.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return redirect("/home", msgReviewNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	if !h.reviewService.CanModify(review, session.CurrentUser(c)) {
		return redirect("/home", msgNotOwner), nil
	}

	return render(view.EditReview, gin.H{
		"Title":  "Edit " + review.MovieTitle,
		"Review": review,
		"Form":   form,
	}, msg).WithStatus(http.StatusBadRequest), nil
}

func formFromReview(r *domain.Review) dto.ReviewForm {
	return dto.ReviewForm{
		MovieTitle:   r.MovieTitle,
		YearReleased: r.YearReleased,
		Director:     r.Director,
		AgeRating:    r.AgeRating,
		RunTime:      r.RunTime,
		Genre:        r.Genre,
		Description:  r.Description,
		UserRating:   r.UserRating,
		Image:        r.Image,
	}
}

// inputMessage strips the sentinel prefix from a service validation error
func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
