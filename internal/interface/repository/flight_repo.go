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

// MongoFlightRepository implements FlightRepository
type MongoFlightRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightRepository creates a new flight repository
func NewMongoFlightRepository(db *mongo.Database) repository.FlightRepository {
	return &MongoFlightRepository{
		collection: db.Collection("flights"),
	}
}

// UpsertMany writes flights keyed by their deterministic identifier.
// Non-key fields are overwritten; createdAt is kept from the first
// insert.
func (r *MongoFlightRepository) UpsertMany(ctx context.Context, flights []*entity.Flight) error {
	for _, flight := range flights {
		flight.UpdatedAt = time.Now()

		update := bson.M{
			"$set": bson.M{
				"flightNumber":  flight.FlightNumber,
				"from":          flight.From,
				"to":            flight.To,
				"departureDate": flight.DepartureDate,
				"departureTime": flight.DepartureTime,
				"arrivalDate":   flight.ArrivalDate,
				"arrivalTime":   flight.ArrivalTime,
				"duration":      flight.Duration,
				"airline":       flight.Airline,
				"updatedAt":     flight.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": flight.CreatedAt},
		}

		opts := options.Update().SetUpsert(true)
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": flight.ID}, update, opts); err != nil {
			return err
		}
	}
	return nil
}
