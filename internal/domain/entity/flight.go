package entity

import (
	"time"
)

// Flight is one scheduled segment. The ID is a pure function of
// (flight number, origin, departure date, departure time), so repeated
// scrapes of the same segment collapse onto one row.
type Flight struct {
	ID            string    `bson:"_id"`
	FlightNumber  string    `bson:"flightNumber"`
	From          string    `bson:"from"`
	To            string    `bson:"to"`
	DepartureDate string    `bson:"departureDate"` // 2006-01-02
	DepartureTime string    `bson:"departureTime"` // 15:04:05
	ArrivalDate   string    `bson:"arrivalDate"`
	ArrivalTime   string    `bson:"arrivalTime"`
	Duration      int       `bson:"duration"` // minutes
	Airline       string    `bson:"airline"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}
