package mongodb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/martijn/moviereview/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// reviewDocument is the stored shape of a review
type reviewDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	MovieTitle   string             `bson:"movie_title"`
	YearReleased flexInt            `bson:"year_released"`
	Director     string             `bson:"director"`
	AgeRating    string             `bson:"age_rating"`
	RunTime      flexInt            `bson:"run_time"`
	Genre        string             `bson:"genre"`
	Description  string             `bson:"description"`
	UserRating   flexInt            `bson:"user_rating"`
	Image        string             `bson:"image"`
	Author       string             `bson:"author,omitempty"`
	CreatedAt    time.Time          `bson:"created_at,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at,omitempty"`
}

func newReviewDocument(r *domain.Review) reviewDocument {
	return reviewDocument{
		MovieTitle:   r.MovieTitle,
		YearReleased: flexInt(r.YearReleased),
		Director:     r.Director,
		AgeRating:    r.AgeRating,
		RunTime:      flexInt(r.RunTime),
		Genre:        r.Genre,
		Description:  r.Description,
		UserRating:   flexInt(r.UserRating),
		Image:        r.Image,
		Author:       r.Author,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (d reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID: d.ID.Hex(),
		ReviewFields: domain.ReviewFields{
			MovieTitle:   d.MovieTitle,
			YearReleased: int(d.YearReleased),
			Director:     d.Director,
			AgeRating:    d.AgeRating,
			RunTime:      int(d.RunTime),
			Genre:        d.Genre,
			Description:  d.Description,
			UserRating:   int(d.UserRating),
			Image:        d.Image,
		},
		Author:    d.Author,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// fieldsUpdate builds the $set document for the editable fields
func fieldsUpdate(f domain.ReviewFields, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"movie_title":   f.MovieTitle,
		"year_released": f.YearReleased,
		"director":      f.Director,
		"age_rating":    f.AgeRating,
		"run_time":      f.RunTime,
		"genre":         f.Genre,
		"description":   f.Description,
		"user_rating":   f.UserRating,
		"image":         f.Image,
		"updated_at":    now,
	}}
}

// flexInt decodes numbers that older documents stored as form strings
// ("2021", "148") as well as native BSON numbers.
type flexInt int

func (n *flexInt) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Int32:
		*n = flexInt(raw.Int32())
	case bsontype.Int64:
		*n = flexInt(raw.Int64())
	case bsontype.Double:
		*n = flexInt(math.Round(raw.Double()))
	case bsontype.String:
		s := strings.TrimSpace(raw.StringValue())
		if s == "" {
			*n = 0
			return nil
		}
		if v, err := strconv.Atoi(s); err == nil {
			*n = flexInt(v)
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// free text such as "two hours" cannot be recovered
			*n = 0
			return nil
		}
		*n = flexInt(math.Round(f))
	case bsontype.Null, bsontype.Undefined:
		*n = 0
	default:
		return fmt.Errorf("cannot decode BSON %s as integer", t)
	}
	return nil
}
