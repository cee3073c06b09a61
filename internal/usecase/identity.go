package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/pkg/utils"
)

func hashFields(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// FlightID derives the deterministic flight identifier from the fields
// that pin a scheduled segment down. Two scrapes of the same segment
// always collapse to the same ID.
func FlightID(flightNumber, origin, departureDate, departureTime string) string {
	return hashFields(flightNumber, origin, departureDate, departureTime)
}

// TripID hashes the sorted, pipe-joined member flight IDs. Sorting makes
// the ID independent of scrape order and direction tagging: a trip is
// identified solely by its set of flights.
func TripID(flightIDs []string) string {
	sorted := make([]string, len(flightIDs))
	copy(sorted, flightIDs)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}

// LegID is composite, scoped to its trip.
func LegID(direction, flightID, tripID string) string {
	return fmt.Sprintf("%s_%s_%s", direction, flightID, tripID)
}

// DealID excludes price and link so a re-scrape updates the existing
// deal in place.
func DealID(tripID, source, provider string) string {
	return fmt.Sprintf("%s_%s_%s", tripID, source, provider)
}

// QueryFingerprint identifies one (origin, destination, departure date,
// return date) search. Origin and destination are uppercased so casing
// variants collapse.
func QueryFingerprint(from, to, departureDate, returnDate string) string {
	return hashFields(strings.ToUpper(from), strings.ToUpper(to), departureDate, returnDate)
}

// RecordSet accumulates canonical records keyed by identifier.
// Last write wins, so repeated itineraries within one batch merge.
type RecordSet struct {
	Flights map[string]*entity.Flight
	Trips   map[string]*entity.Trip
	Legs    map[string]*entity.Leg
	Deals   map[string]*entity.Deal
}

// NewRecordSet creates an empty record set
func NewRecordSet() *RecordSet {
	return &RecordSet{
		Flights: make(map[string]*entity.Flight),
		Trips:   make(map[string]*entity.Trip),
		Legs:    make(map[string]*entity.Leg),
		Deals:   make(map[string]*entity.Deal),
	}
}

var stopsRe = regexp.MustCompile(`(\d+)`)

// AddItinerary normalizes one extracted itinerary and folds its
// Flight/Leg/Trip/Deal records into the set. The source tag feeds deal
// identity.
func (rs *RecordSet) AddItinerary(it entity.Itinerary, source string) error {
	outDate, ok := utils.NormalizeDate(it.Outbound.Date)
	if !ok {
		return fmt.Errorf("unparseable outbound date %q", it.Outbound.Date)
	}

	outFlights, err := buildFlights(it.Outbound, outDate)
	if err != nil {
		return fmt.Errorf("outbound section: %w", err)
	}
	if len(outFlights) == 0 {
		return fmt.Errorf("no usable outbound legs")
	}

	// A return section that fails normalization degrades the itinerary
	// to one-way instead of discarding it.
	var retFlights []directedFlight
	if it.Return != nil {
		if retDate, ok := utils.NormalizeDate(it.Return.Date); ok {
			retFlights, _ = buildFlights(*it.Return, retDate)
		}
	}

	if len(it.Prices) == 0 {
		return fmt.Errorf("no parseable prices")
	}

	var flightIDs []string
	for _, df := range append(append([]directedFlight{}, outFlights...), retFlights...) {
		flightIDs = append(flightIDs, df.flight.ID)
	}
	tripID := TripID(flightIDs)

	now := time.Now()
	duration := utils.NormalizeDuration(it.Outbound.Duration)
	if it.Return != nil && len(retFlights) > 0 {
		duration += utils.NormalizeDuration(it.Return.Duration)
	}

	trip := &entity.Trip{
		ID:        tripID,
		From:      outFlights[0].flight.From,
		To:        outFlights[len(outFlights)-1].flight.To,
		Stops:     parseStops(it.Outbound.Stops, len(outFlights)),
		Duration:  duration,
		RoundTrip: len(retFlights) > 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rs.Trips[trip.ID] = trip

	addLegs := func(flights []directedFlight, direction string) {
		for i, df := range flights {
			rs.Flights[df.flight.ID] = df.flight
			leg := &entity.Leg{
				ID:                LegID(direction, df.flight.ID, tripID),
				TripID:            tripID,
				FlightID:          df.flight.ID,
				Direction:         direction,
				Position:          i,
				ConnectionMinutes: df.connectionMinutes,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			rs.Legs[leg.ID] = leg
		}
	}
	addLegs(outFlights, entity.DirectionOutbound)
	addLegs(retFlights, entity.DirectionInbound)

	for _, price := range it.Prices {
		deal := &entity.Deal{
			ID:        DealID(tripID, source, price.Provider),
			TripID:    tripID,
			Source:    source,
			Provider:  price.Provider,
			Price:     price.Price,
			Link:      price.Link,
			CreatedAt: now,
			UpdatedAt: now,
		}
		rs.Deals[deal.ID] = deal
	}

	return nil
}

type directedFlight struct {
	flight            *entity.Flight
	connectionMinutes int
}

// buildFlights normalizes the legs of one section. Legs whose times fail
// normalization are dropped, not fatal.
func buildFlights(section entity.ItinerarySection, sectionDate string) ([]directedFlight, error) {
	now := time.Now()
	var flights []directedFlight

	for i, leg := range section.Legs {
		depTime, ok := utils.NormalizeTime(leg.DepartTime)
		if !ok {
			continue
		}
		arrTime, ok := utils.NormalizeTime(leg.ArriveTime)
		if !ok {
			continue
		}

		arrDate := sectionDate
		if leg.ArrivalDate != "" {
			if override, ok := utils.NormalizeDate(leg.ArrivalDate); ok {
				arrDate = override
			}
		}
		// Overnight arrival without an explicit override
		if arrDate == sectionDate && arrTime < depTime {
			arrDate = utils.NextDate(sectionDate)
		}

		flight := &entity.Flight{
			ID:            FlightID(leg.FlightNumber, leg.From, sectionDate, depTime),
			FlightNumber:  leg.FlightNumber,
			From:          leg.From,
			To:            leg.To,
			DepartureDate: sectionDate,
			DepartureTime: depTime,
			ArrivalDate:   arrDate,
			ArrivalTime:   arrTime,
			Duration:      utils.NormalizeDuration(leg.Duration),
			Airline:       leg.Airline,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		connection := 0
		if i < len(section.Legs)-1 && leg.Connection != "" {
			connection = utils.NormalizeDuration(leg.Connection)
		}
		flights = append(flights, directedFlight{flight: flight, connectionMinutes: connection})
	}

	return flights, nil
}

// parseStops reads a stop count out of site text like "1 stop" or
// "Direct", falling back to legs-1.
func parseStops(text string, legCount int) int {
	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, "direct") || strings.EqualFold(trimmed, "non-stop") || strings.EqualFold(trimmed, "nonstop") {
		return 0
	}
	if match := stopsRe.FindStringSubmatch(trimmed); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	if legCount > 0 {
		return legCount - 1
	}
	return 0
}
