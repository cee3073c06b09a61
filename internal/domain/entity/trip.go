package entity

import (
	"time"
)

// Leg directions
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Trip is an itinerary: ordered outbound legs plus ordered inbound legs
// (none for one-way). The ID hashes the sorted set of member flight IDs,
// so the same itinerary discovered through different queries maps to one
// row regardless of scrape order.
type Trip struct {
	ID        string    `bson:"_id"`
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	FromCity  string    `bson:"fromCity,omitempty"`
	ToCity    string    `bson:"toCity,omitempty"`
	Stops     int       `bson:"stops"`
	Duration  int       `bson:"duration"` // minutes
	RoundTrip bool      `bson:"roundTrip"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Leg records a flight's membership in one direction of a trip. Its ID
// is composite ({direction}_{flightId}_{tripId}), unique only within the
// owning trip.
type Leg struct {
	ID                string    `bson:"_id"`
	TripID            string    `bson:"tripId"`
	FlightID          string    `bson:"flightId"`
	Direction         string    `bson:"direction"`
	Position          int       `bson:"position"`
	ConnectionMinutes int       `bson:"connectionMinutes,omitempty"` // wait before the next leg
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}
