package entity

import (
	"time"
)

// FetchQuery is the provenance row for one distinct
// (origin, destination, departure date, return date) search. The ID is
// the query fingerprint, so re-running a search refreshes the timestamp
// rather than adding a row.
type FetchQuery struct {
	ID            string    `bson:"_id"`
	From          string    `bson:"from"`
	To            string    `bson:"to"`
	DepartureDate string    `bson:"departureDate"`
	ReturnDate    string    `bson:"returnDate,omitempty"`
	LastFetchedAt time.Time `bson:"lastFetchedAt"`
}
