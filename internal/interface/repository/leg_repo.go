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

// MongoLegRepository implements LegRepository
type MongoLegRepository struct {
	collection *mongo.Collection
}

// NewMongoLegRepository creates a new leg repository
func NewMongoLegRepository(db *mongo.Database) repository.LegRepository {
	collection := db.Collection("legs")

	// Legs are queried by trip when assembling itineraries
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.M{"tripId": 1},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoLegRepository{
		collection: collection,
	}
}

// UpsertMany writes legs keyed by their composite identifier
func (r *MongoLegRepository) UpsertMany(ctx context.Context, legs []*entity.Leg) error {
	for _, leg := range legs {
		leg.UpdatedAt = time.Now()

		update := bson.M{
			"$set": bson.M{
				"tripId":            leg.TripID,
				"flightId":          leg.FlightID,
				"direction":         leg.Direction,
				"position":          leg.Position,
				"connectionMinutes": leg.ConnectionMinutes,
				"updatedAt":         leg.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": leg.CreatedAt},
		}

		opts := options.Update().SetUpsert(true)
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": leg.ID}, update, opts); err != nil {
			return err
		}
	}
	return nil
}
