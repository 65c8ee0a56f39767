package domain

import (
	"time"
)

// ReviewFields holds the user-editable part of a review
type ReviewFields struct {
	MovieTitle   string `db:"movie_title" bson:"movie_title"`
	YearReleased int    `db:"year_released" bson:"year_released"`
	Director     string `db:"director" bson:"director"`
	AgeRating    string `db:"age_rating" bson:"age_rating"`
	RunTime      int    `db:"run_time" bson:"run_time"` // minutes
	Genre        string `db:"genre" bson:"genre"`
	Description  string `db:"description" bson:"description"`
	UserRating   int    `db:"user_rating" bson:"user_rating"`
	Image        string `db:"image" bson:"image"`
}

type Review struct {
	ID string `db:"id" bson:"-"`

	ReviewFields `bson:",inline"`

	Author    string    `db:"author" bson:"author"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`
}

func NewReview(fields ReviewFields, author string) *Review {
	now := time.Now().UTC()
	return &Review{
		ReviewFields: fields,
		Author:       author,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// OwnedBy reports whether username may modify the review. Reviews stored
// without an author predate ownership and are open to any logged-in user.
func (r *Review) OwnedBy(username string) bool {
	if r.Author == "" {
		return username != ""
	}
	return r.Author == username
}
