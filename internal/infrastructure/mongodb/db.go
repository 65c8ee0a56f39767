package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection   = "users"
	ReviewsCollection = "reviews"

	connectTimeout = 10 * time.Second
)

type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// New connects to MongoDB, verifies the connection and makes sure the
// indexes the repositories rely on exist.
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := &DB{
		client:   client,
		database: client.Database(dbName),
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return db, nil
}

// EnsureIndexes creates the unique username index and the text index used
// by review search. Both calls are no-ops when the index already exists.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}

	_, err = db.database.Collection(ReviewsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "movie_title", Value: "text"},
			{Key: "director", Value: "text"},
			{Key: "genre", Value: "text"},
			{Key: "description", Value: "text"},
		},
		Options: options.Index().SetName("review_text").SetWeights(bson.D{
			{Key: "movie_title", Value: 10},
			{Key: "director", Value: 5},
			{Key: "genre", Value: 3},
			{Key: "description", Value: 1},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create review text index: %w", err)
	}

	return nil
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
