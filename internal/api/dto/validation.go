package dto

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var fieldLabels = map[string]string{
	"MovieTitle":   "Movie title",
	"YearReleased": "Year released",
	"Director":     "Director",
	"AgeRating":    "Age rating",
	"RunTime":      "Run time",
	"Genre":        "Genre",
	"Description":  "Description",
	"UserRating":   "Rating",
	"Image":        "Image",
	"Username":     "Username",
	"Password":     "Password",
}

// ValidationMessage turns a binding error into a notice a user can act on
func ValidationMessage(err error) string {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return "Year released, run time and rating must be whole numbers"
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid form submission"
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
