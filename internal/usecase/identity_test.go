package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santistebanc/motia/internal/domain/entity"
)

func TestFlightIDDeterminismAndSensitivity(t *testing.T) {
	base := FlightID("FR1234", "VIE", "2025-12-11", "14:30:00")

	assert.Equal(t, base, FlightID("FR1234", "VIE", "2025-12-11", "14:30:00"))

	assert.NotEqual(t, base, FlightID("FR1235", "VIE", "2025-12-11", "14:30:00"))
	assert.NotEqual(t, base, FlightID("FR1234", "BCN", "2025-12-11", "14:30:00"))
	assert.NotEqual(t, base, FlightID("FR1234", "VIE", "2025-12-12", "14:30:00"))
	assert.NotEqual(t, base, FlightID("FR1234", "VIE", "2025-12-11", "14:31:00"))
}

func TestTripIDOrderIndependence(t *testing.T) {
	a := FlightID("FR1234", "VIE", "2025-12-11", "14:30:00")
	b := FlightID("W63001", "BCN", "2025-12-11", "19:10:00")
	c := FlightID("U24567", "PMI", "2025-12-18", "08:00:00")

	expected := TripID([]string{a, b, c})
	permutations := [][]string{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, perm := range permutations {
		assert.Equal(t, expected, TripID(perm))
	}

	// A different flight set is a different trip
	assert.NotEqual(t, expected, TripID([]string{a, b}))
}

func TestTripIDDoesNotMutateInput(t *testing.T) {
	ids := []string{"zzz", "aaa", "mmm"}
	TripID(ids)
	assert.Equal(t, []string{"zzz", "aaa", "mmm"}, ids)
}

func TestCompositeIdentifiers(t *testing.T) {
	assert.Equal(t, "outbound_f1_t1", LegID("outbound", "f1", "t1"))
	assert.Equal(t, "t1_flightsfinder_Kiwi.com", DealID("t1", "flightsfinder", "Kiwi.com"))
}

func TestQueryFingerprintCollapsesCasing(t *testing.T) {
	upper := QueryFingerprint("VIE", "BCN", "2025-12-11", "2025-12-18")
	lower := QueryFingerprint("vie", "bcn", "2025-12-11", "2025-12-18")
	assert.Equal(t, upper, lower)

	oneWay := QueryFingerprint("VIE", "BCN", "2025-12-11", "")
	assert.NotEqual(t, upper, oneWay)
}

func testItinerary() entity.Itinerary {
	return entity.Itinerary{
		Outbound: entity.ItinerarySection{
			Date:     "11 Dec 2025",
			Airline:  "Ryanair",
			Duration: "2h 25m",
			Stops:    "Direct",
			Legs: []entity.SectionLeg{
				{
					FlightNumber: "FR1234",
					Airline:      "Ryanair",
					DepartTime:   "14:30",
					ArriveTime:   "16:55",
					From:         "VIE",
					To:           "BCN",
					Duration:     "2h 25m",
				},
			},
		},
		Return: &entity.ItinerarySection{
			Date:     "18 Dec 2025",
			Airline:  "Vueling",
			Duration: "2h 20m",
			Stops:    "Direct",
			Legs: []entity.SectionLeg{
				{
					FlightNumber: "VY8711",
					Airline:      "Vueling",
					DepartTime:   "10:15",
					ArriveTime:   "12:35",
					From:         "BCN",
					To:           "VIE",
					Duration:     "2h 20m",
				},
			},
		},
		Prices: []entity.PriceOption{
			{Provider: "Kiwi.com", Price: 123.45, Link: "https://deep.example/a"},
			{Provider: "Mytrip", Price: 130.00},
		},
	}
}

func TestAddItineraryBuildsGraph(t *testing.T) {
	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(testItinerary(), "flightsfinder"))

	assert.Len(t, rs.Flights, 2)
	assert.Len(t, rs.Trips, 1)
	assert.Len(t, rs.Legs, 2)
	assert.Len(t, rs.Deals, 2)

	for _, trip := range rs.Trips {
		assert.Equal(t, "VIE", trip.From)
		assert.Equal(t, "BCN", trip.To)
		assert.True(t, trip.RoundTrip)
		assert.Equal(t, 0, trip.Stops)
		assert.Equal(t, 145+140, trip.Duration)
	}

	directions := map[string]int{}
	for _, leg := range rs.Legs {
		directions[leg.Direction]++
	}
	assert.Equal(t, 1, directions[entity.DirectionOutbound])
	assert.Equal(t, 1, directions[entity.DirectionInbound])

	for _, deal := range rs.Deals {
		assert.Equal(t, "flightsfinder", deal.Source)
	}
}

func TestAddItineraryIsIdempotentWithinBatch(t *testing.T) {
	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(testItinerary(), "flightsfinder"))

	// Same itinerary again with an updated price
	updated := testItinerary()
	updated.Prices[0].Price = 99.99
	require.NoError(t, rs.AddItinerary(updated, "flightsfinder"))

	assert.Len(t, rs.Flights, 2)
	assert.Len(t, rs.Trips, 1)
	assert.Len(t, rs.Deals, 2)

	var kiwi *entity.Deal
	for _, deal := range rs.Deals {
		if deal.Provider == "Kiwi.com" {
			kiwi = deal
		}
	}
	require.NotNil(t, kiwi)
	assert.Equal(t, 99.99, kiwi.Price)
}

func TestAddItineraryMalformedReturnDegradesToOneWay(t *testing.T) {
	it := testItinerary()
	it.Return.Date = "not a date"

	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(it, "flightsfinder"))

	assert.Len(t, rs.Flights, 1)
	assert.Len(t, rs.Legs, 1)
	for _, trip := range rs.Trips {
		assert.False(t, trip.RoundTrip)
	}
}

func TestAddItineraryOvernightArrival(t *testing.T) {
	it := testItinerary()
	it.Return = nil
	it.Outbound.Legs[0].DepartTime = "23:30"
	it.Outbound.Legs[0].ArriveTime = "01:55"

	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(it, "flightsfinder"))

	for _, flight := range rs.Flights {
		assert.Equal(t, "2025-12-11", flight.DepartureDate)
		assert.Equal(t, "2025-12-12", flight.ArrivalDate)
	}
}

func TestAddItineraryArrivalDateOverride(t *testing.T) {
	it := testItinerary()
	it.Return = nil
	it.Outbound.Legs[0].ArrivalDate = "13 Dec 2025"

	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(it, "flightsfinder"))

	for _, flight := range rs.Flights {
		assert.Equal(t, "2025-12-13", flight.ArrivalDate)
	}
}

func TestAddItineraryRejectsUnusableInput(t *testing.T) {
	noDate := testItinerary()
	noDate.Outbound.Date = ""
	assert.Error(t, NewRecordSet().AddItinerary(noDate, "src"))

	noPrices := testItinerary()
	noPrices.Prices = nil
	assert.Error(t, NewRecordSet().AddItinerary(noPrices, "src"))

	badLegs := testItinerary()
	badLegs.Outbound.Legs[0].DepartTime = "??"
	assert.Error(t, NewRecordSet().AddItinerary(badLegs, "src"))
}

func TestConnectionMinutes(t *testing.T) {
	it := testItinerary()
	it.Return = nil
	it.Outbound.Stops = "1 stop"
	it.Outbound.Legs = []entity.SectionLeg{
		{
			FlightNumber: "FR1234", Airline: "Ryanair",
			DepartTime: "06:00", ArriveTime: "08:00",
			From: "VIE", To: "STN", Duration: "2h",
			Connection: "1h 15m",
		},
		{
			FlightNumber: "FR5678", Airline: "Ryanair",
			DepartTime: "09:15", ArriveTime: "11:20",
			From: "STN", To: "BCN", Duration: "2h 5m",
		},
	}

	rs := NewRecordSet()
	require.NoError(t, rs.AddItinerary(it, "flightsfinder"))

	assert.Len(t, rs.Legs, 2)
	for _, leg := range rs.Legs {
		if leg.Position == 0 {
			assert.Equal(t, 75, leg.ConnectionMinutes)
		} else {
			assert.Equal(t, 0, leg.ConnectionMinutes)
		}
	}
	for _, trip := range rs.Trips {
		assert.Equal(t, 1, trip.Stops)
	}
}
