package entity

import (
	"time"
)

// Deal is a (trip, provider) price quote with a booking link. Price and
// link are excluded from the ID so a re-scrape updates them in place
// instead of inserting a duplicate.
type Deal struct {
	ID        string    `bson:"_id"`
	TripID    string    `bson:"tripId"`
	Source    string    `bson:"source"`
	Provider  string    `bson:"provider"`
	Price     float64   `bson:"price"`
	Link      string    `bson:"link,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
