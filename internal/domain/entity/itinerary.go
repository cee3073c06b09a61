package entity

// Itinerary is one candidate trip offer as extracted from the result
// page: an outbound leg sequence, an optional return leg sequence, and
// the shared provider price list. Fields hold raw site text; the
// ingestion usecase normalizes them.
type Itinerary struct {
	Outbound ItinerarySection
	Return   *ItinerarySection
	Prices   []PriceOption
}

// ItinerarySection is one direction of an itinerary together with its
// summary row.
type ItinerarySection struct {
	Date     string // date label from the section heading
	Airline  string
	Depart   string
	Arrive   string
	Duration string
	Stops    string
	Legs     []SectionLeg
}

// SectionLeg is one flight segment within a direction. Connection and
// ArrivalDate are optional: Connection is the wait before the next leg,
// ArrivalDate overrides the section date when a leg lands the next day.
type SectionLeg struct {
	FlightNumber string
	Airline      string
	DepartTime   string
	ArriveTime   string
	From         string
	To           string
	Duration     string
	Connection   string
	ArrivalDate  string
}

// PriceOption is one provider row from the shared price list.
type PriceOption struct {
	Provider string
	Price    float64
	Link     string
}
