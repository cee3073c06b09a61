package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/internal/domain/repository"
	"github.com/santistebanc/motia/pkg/logger"
	"github.com/santistebanc/motia/pkg/metrics"
	"github.com/santistebanc/motia/pkg/utils"
)

// IngestService is the top-level ingestion entry point: it drives the
// search provider per date combination, converts extracted itineraries
// into canonical records and upserts them.
type IngestService struct {
	provider       repository.SearchProvider
	flightRepo     repository.FlightRepository
	tripRepo       repository.TripRepository
	legRepo        repository.LegRepository
	dealRepo       repository.DealRepository
	fetchQueryRepo repository.FetchQueryRepository
	airportRepo    repository.AirportRepository
	logger         logger.Logger
	metrics        *metrics.Metrics
	source         string
	comboDelay     time.Duration
}

// NewIngestService creates a new ingestion service. airportRepo and
// metrics may be nil.
func NewIngestService(
	provider repository.SearchProvider,
	flightRepo repository.FlightRepository,
	tripRepo repository.TripRepository,
	legRepo repository.LegRepository,
	dealRepo repository.DealRepository,
	fetchQueryRepo repository.FetchQueryRepository,
	airportRepo repository.AirportRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	source string,
	comboDelay time.Duration,
) *IngestService {
	return &IngestService{
		provider:       provider,
		flightRepo:     flightRepo,
		tripRepo:       tripRepo,
		legRepo:        legRepo,
		dealRepo:       dealRepo,
		fetchQueryRepo: fetchQueryRepo,
		airportRepo:    airportRepo,
		logger:         logger,
		metrics:        metrics,
		source:         source,
		comboDelay:     comboDelay,
	}
}

// ScrapeResult reports one completed single-combination ingestion
type ScrapeResult struct {
	TripsScraped int `json:"tripsScraped"`
}

// ScrapeRangeResult reports a completed date-range ingestion
type ScrapeRangeResult struct {
	TripsScraped          int `json:"tripsScraped"`
	CombinationsProcessed int `json:"combinationsProcessed"`
	CombinationsFailed    int `json:"combinationsFailed"`
}

// DateRange is an inclusive canonical date interval. A range with an
// empty End means the single date Start.
type DateRange struct {
	Start string
	End   string
}

// Scrape ingests one (origin, destination, departure date, return date)
// combination. Re-invoking with identical parameters updates prices and
// links but never duplicates rows.
func (s *IngestService) Scrape(ctx context.Context, from, to, departureDate, returnDate string) (*ScrapeResult, error) {
	runID := uuid.NewString()
	log := s.logger.With("runId", runID, "from", from, "to", to, "depart", departureDate, "return", returnDate)

	trips, err := s.scrapeCombination(ctx, log, from, to, departureDate, returnDate)
	if err != nil {
		return nil, err
	}
	return &ScrapeResult{TripsScraped: trips}, nil
}

// ScrapeRange expands the departure and return ranges into a cartesian
// list of date combinations and ingests them sequentially. A failing
// combination is logged and skipped; earlier combinations stay
// committed because each one is persisted as it completes.
func (s *IngestService) ScrapeRange(ctx context.Context, from, to string, departure DateRange, ret *DateRange) (*ScrapeRangeResult, error) {
	combinations, err := expandCombinations(departure, ret)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := s.logger.With("runId", runID, "from", from, "to", to)
	log.Info("Starting range scrape", "combinations", len(combinations))

	result := &ScrapeRangeResult{}
	for i, combo := range combinations {
		if i > 0 && s.comboDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.comboDelay):
			}
		}

		comboLog := log.With("depart", combo[0], "return", combo[1])
		trips, err := s.scrapeCombination(ctx, comboLog, from, to, combo[0], combo[1])
		if err != nil {
			comboLog.Error("Combination failed", "error", err)
			result.CombinationsFailed++
			continue
		}
		result.TripsScraped += trips
		result.CombinationsProcessed++
	}

	log.Info("Range scrape completed",
		"tripsScraped", result.TripsScraped,
		"processed", result.CombinationsProcessed,
		"failed", result.CombinationsFailed)
	return result, nil
}

func (s *IngestService) scrapeCombination(ctx context.Context, log logger.Logger, from, to, departureDate, returnDate string) (int, error) {
	started := time.Now()
	if s.metrics != nil {
		s.metrics.SearchesStarted.Inc()
	}

	outcome := s.provider.Search(ctx, entity.SearchParams{
		From:          from,
		To:            to,
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
	})
	if !outcome.Success {
		s.countError("search")
		return 0, fmt.Errorf("search failed: %s", outcome.Message)
	}
	log.Info("Search returned", "finished", outcome.Finished, "itineraries", len(outcome.Itineraries))

	records := NewRecordSet()
	for i, itinerary := range outcome.Itineraries {
		if err := records.AddItinerary(itinerary, s.source); err != nil {
			log.Warn("Skipping itinerary", "index", i, "reason", err.Error())
		}
	}

	s.enrichTrips(ctx, records)

	if err := s.persist(ctx, records); err != nil {
		s.countError("persist")
		return 0, err
	}

	fingerprint := QueryFingerprint(from, to, departureDate, returnDate)
	query := &entity.FetchQuery{
		ID:            fingerprint,
		From:          from,
		To:            to,
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
		LastFetchedAt: time.Now(),
	}
	if err := s.fetchQueryRepo.Upsert(ctx, query); err != nil {
		s.countError("persist")
		return 0, fmt.Errorf("failed to upsert fetch query: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TripsScraped.Add(float64(len(records.Trips)))
		s.metrics.DealsUpserted.Add(float64(len(records.Deals)))
		s.metrics.ScrapeDuration.Observe(time.Since(started).Seconds())
	}

	log.Info("Combination ingested",
		"flights", len(records.Flights),
		"trips", len(records.Trips),
		"legs", len(records.Legs),
		"deals", len(records.Deals))
	return len(records.Trips), nil
}

func (s *IngestService) persist(ctx context.Context, records *RecordSet) error {
	flights := make([]*entity.Flight, 0, len(records.Flights))
	for _, flight := range records.Flights {
		flights = append(flights, flight)
	}
	if err := s.flightRepo.UpsertMany(ctx, flights); err != nil {
		return fmt.Errorf("failed to upsert flights: %w", err)
	}

	trips := make([]*entity.Trip, 0, len(records.Trips))
	for _, trip := range records.Trips {
		trips = append(trips, trip)
	}
	if err := s.tripRepo.UpsertMany(ctx, trips); err != nil {
		return fmt.Errorf("failed to upsert trips: %w", err)
	}

	legs := make([]*entity.Leg, 0, len(records.Legs))
	for _, leg := range records.Legs {
		legs = append(legs, leg)
	}
	if err := s.legRepo.UpsertMany(ctx, legs); err != nil {
		return fmt.Errorf("failed to upsert legs: %w", err)
	}

	deals := make([]*entity.Deal, 0, len(records.Deals))
	for _, deal := range records.Deals {
		deals = append(deals, deal)
	}
	if err := s.dealRepo.UpsertMany(ctx, deals); err != nil {
		return fmt.Errorf("failed to upsert deals: %w", err)
	}

	return nil
}

// enrichTrips fills in city names from the airport reference table.
// Missing reference rows are not an error.
func (s *IngestService) enrichTrips(ctx context.Context, records *RecordSet) {
	if s.airportRepo == nil {
		return
	}
	for _, trip := range records.Trips {
		if airport, err := s.airportRepo.GetByCode(ctx, trip.From); err == nil {
			trip.FromCity = airport.CityName
		}
		if airport, err := s.airportRepo.GetByCode(ctx, trip.To); err == nil {
			trip.ToCity = airport.CityName
		}
	}
}

func (s *IngestService) countError(operation string) {
	if s.metrics != nil {
		s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}

// expandCombinations builds the explicit (departure, return) date pair
// list: every departure date crossed with every return date, or with
// the empty return for one-way ranges.
func expandCombinations(departure DateRange, ret *DateRange) ([][2]string, error) {
	departEnd := departure.End
	if departEnd == "" {
		departEnd = departure.Start
	}
	departDates, err := utils.ExpandDateRange(departure.Start, departEnd)
	if err != nil {
		return nil, fmt.Errorf("departure range: %w", err)
	}

	returnDates := []string{""}
	if ret != nil && ret.Start != "" {
		retEnd := ret.End
		if retEnd == "" {
			retEnd = ret.Start
		}
		returnDates, err = utils.ExpandDateRange(ret.Start, retEnd)
		if err != nil {
			return nil, fmt.Errorf("return range: %w", err)
		}
	}

	var combinations [][2]string
	for _, depart := range departDates {
		for _, retDate := range returnDates {
			combinations = append(combinations, [2]string{depart, retDate})
		}
	}
	return combinations, nil
}
