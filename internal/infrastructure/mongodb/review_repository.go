package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *DB) repository.ReviewRepository {
	return newReviewRepository(db.Collection(ReviewsCollection))
}

func newReviewRepository(collection *mongo.Collection) *reviewRepository {
	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	doc := newReviewDocument(review)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	review.ID = doc.ID.Hex()
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}

	var doc reviewDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *reviewRepository) Update(ctx context.Context, id string, fields domain.ReviewFields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, fieldsUpdate(fields, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Delete is unconditional; removing an unknown id is not an error
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.D{}, opts)
}

// Search runs a $text query against the review text index, best match first
func (r *reviewRepository) Search(ctx context.Context, query string) ([]*domain.Review, error) {
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}})

	return r.find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
}

func (r *reviewRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*domain.Review, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]*domain.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, doc.toDomain())
	}
	return reviews, nil
}
