package dto

import (
	"github.com/martijn/moviereview/internal/core/domain"
)

// ReviewForm is the form posted by the new and edit review pages. Numeric
// fields are parsed and range-checked here instead of being stored as text.
type ReviewForm struct {
	MovieTitle   string `form:"movie_title" binding:"required,max=200"`
	YearReleased int    `form:"year_released" binding:"required,gte=1870,lte=2100"`
	Director     string `form:"director" binding:"max=200"`
	AgeRating    string `form:"age_rating" binding:"max=20"`
	RunTime      int    `form:"run_time" binding:"required,gte=1,lte=1000"`
	Genre        string `form:"genre" binding:"max=100"`
	Description  string `form:"description" binding:"max=5000"`
	UserRating   int    `form:"user_rating" binding:"gte=0,lte=10"`
	Image        string `form:"image" binding:"max=2000"`
}

func (f ReviewForm) Fields() domain.ReviewFields {
	return domain.ReviewFields{
		MovieTitle:   f.MovieTitle,
		YearReleased: f.YearReleased,
		Director:     f.Director,
		AgeRating:    f.AgeRating,
		RunTime:      f.RunTime,
		Genre:        f.Genre,
		Description:  f.Description,
		UserRating:   f.UserRating,
		Image:        f.Image,
	}
}

// SearchForm carries the search bar query from either the body or the URL
type SearchForm struct {
	Data string `form:"data"`
}
