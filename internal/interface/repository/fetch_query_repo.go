package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/internal/domain/repository"
)

// MongoFetchQueryRepository implements FetchQueryRepository
type MongoFetchQueryRepository struct {
	collection *mongo.Collection
}

// NewMongoFetchQueryRepository creates a new fetch query repository
func NewMongoFetchQueryRepository(db *mongo.Database) repository.FetchQueryRepository {
	return &MongoFetchQueryRepository{
		collection: db.Collection("fetch_queries"),
	}
}

// Upsert stamps the provenance row for one query fingerprint
func (r *MongoFetchQueryRepository) Upsert(ctx context.Context, query *entity.FetchQuery) error {
	if query.LastFetchedAt.IsZero() {
		query.LastFetchedAt = time.Now()
	}

	update := bson.M{
		"$set": bson.M{
			"from":          query.From,
			"to":            query.To,
			"departureDate": query.DepartureDate,
			"returnDate":    query.ReturnDate,
			"lastFetchedAt": query.LastFetchedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": query.ID}, update, opts)
	return err
}

// FindByFingerprint returns the provenance row for a query fingerprint
func (r *MongoFetchQueryRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*entity.FetchQuery, error) {
	var query entity.FetchQuery
	err := r.collection.FindOne(ctx, bson.M{"_id": fingerprint}).Decode(&query)
	if err != nil {
		return nil, err
	}
	return &query, nil
}
