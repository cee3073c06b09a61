package entity

// SearchParams describes one search sent to the fare site.
type SearchParams struct {
	From          string
	To            string
	DepartureDate string // 2006-01-02
	ReturnDate    string // empty for one-way
	Cabin         string
}

// SearchOutcome is the result of driving one search job to completion.
// Success is false only on transport-level failure; an empty result set
// from a finished job is still a success.
type SearchOutcome struct {
	Finished    bool
	Itineraries []Itinerary
	Cookies     string
	Success     bool
	Message     string
}
