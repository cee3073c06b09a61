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

// MongoDealRepository implements DealRepository
type MongoDealRepository struct {
	collection *mongo.Collection
}

// NewMongoDealRepository creates a new deal repository
func NewMongoDealRepository(db *mongo.Database) repository.DealRepository {
	collection := db.Collection("deals")

	// Deals are listed per trip sorted by price
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "tripId", Value: 1}, {Key: "price", Value: 1}},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoDealRepository{
		collection: collection,
	}
}

// UpsertMany writes deals keyed by (trip, source, provider). Price and
// link are outside the key, so a re-scrape updates them in place.
func (r *MongoDealRepository) UpsertMany(ctx context.Context, deals []*entity.Deal) error {
	for _, deal := range deals {
		deal.UpdatedAt = time.Now()

		update := bson.M{
			"$set": bson.M{
				"tripId":    deal.TripID,
				"source":    deal.Source,
				"provider":  deal.Provider,
				"price":     deal.Price,
				"link":      deal.Link,
				"updatedAt": deal.UpdatedAt,
			},
			"$setOnInsert": bson.M{"createdAt": deal.CreatedAt},
		}

		opts := options.Update().SetUpsert(true)
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": deal.ID}, update, opts); err != nil {
			return err
		}
	}
	return nil
}
