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

// MongoTripRepository implements TripRepository
type MongoTripRepository struct {
	collection *mongo.Collection
}

// NewMongoTripRepository creates a new trip repository
func NewMongoTripRepository(db *mongo.Database) repository.TripRepository {
	return &MongoTripRepository{
		collection: db.Collection("trips"),
	}
}

// UpsertMany writes trips keyed by their deterministic identifier
func (r *MongoTripRepository) UpsertMany(ctx context.Context, trips []*entity.Trip) error {
	for _, trip := range trips {
		trip.UpdatedAt = time.Now()

		update := bson.M{
			"$set": bson.M{
				"from":      trip.From,
				"to":        trip.To,
				"fromCity":  trip.FromCity,
				"toCity":    trip.ToCity,
				"stops":     trip.Stops,
				"duration":  trip.Duration,
				"roundTrip": trip.RoundTrip,
				"updatedAt": trip.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": trip.CreatedAt},
		}

		opts := options.Update().SetUpsert(true)
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": trip.ID}, update, opts); err != nil {
			return err
		}
	}
	return nil
}
