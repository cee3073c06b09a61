package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/pkg/logger"
)

type fakeProvider struct {
	outcomes []entity.SearchOutcome
	calls    []entity.SearchParams
}

func (p *fakeProvider) Search(_ context.Context, params entity.SearchParams) entity.SearchOutcome {
	p.calls = append(p.calls, params)
	if len(p.outcomes) == 0 {
		return entity.SearchOutcome{Finished: true, Success: true}
	}
	outcome := p.outcomes[0]
	if len(p.outcomes) > 1 {
		p.outcomes = p.outcomes[1:]
	}
	return outcome
}

type fakeStore struct {
	flights      map[string]*entity.Flight
	trips        map[string]*entity.Trip
	legs         map[string]*entity.Leg
	deals        map[string]*entity.Deal
	fetchQueries map[string]*entity.FetchQuery

	upsertCalls int
	failOnCall  int // 1-based UpsertMany call index to fail on; 0 = never
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		flights:      make(map[string]*entity.Flight),
		trips:        make(map[string]*entity.Trip),
		legs:         make(map[string]*entity.Leg),
		deals:        make(map[string]*entity.Deal),
		fetchQueries: make(map[string]*entity.FetchQuery),
	}
}

func (s *fakeStore) step() error {
	s.upsertCalls++
	if s.failOnCall > 0 && s.upsertCalls == s.failOnCall {
		return fmt.Errorf("store unavailable")
	}
	return nil
}

func (s *fakeStore) UpsertMany(ctx context.Context, flights []*entity.Flight) error {
	if err := s.step(); err != nil {
		return err
	}
	for _, f := range flights {
		s.flights[f.ID] = f
	}
	return nil
}

type fakeTripRepo struct{ store *fakeStore }

func (r *fakeTripRepo) UpsertMany(ctx context.Context, trips []*entity.Trip) error {
	if err := r.store.step(); err != nil {
		return err
	}
	for _, t := range trips {
		r.store.trips[t.ID] = t
	}
	return nil
}

type fakeLegRepo struct{ store *fakeStore }

func (r *fakeLegRepo) UpsertMany(ctx context.Context, legs []*entity.Leg) error {
	if err := r.store.step(); err != nil {
		return err
	}
	for _, l := range legs {
		r.store.legs[l.ID] = l
	}
	return nil
}

type fakeDealRepo struct{ store *fakeStore }

func (r *fakeDealRepo) UpsertMany(ctx context.Context, deals []*entity.Deal) error {
	if err := r.store.step(); err != nil {
		return err
	}
	for _, d := range deals {
		r.store.deals[d.ID] = d
	}
	return nil
}

type fakeFetchQueryRepo struct{ store *fakeStore }

func (r *fakeFetchQueryRepo) Upsert(ctx context.Context, q *entity.FetchQuery) error {
	if err := r.store.step(); err != nil {
		return err
	}
	r.store.fetchQueries[q.ID] = q
	return nil
}

func (r *fakeFetchQueryRepo) FindByFingerprint(ctx context.Context, fp string) (*entity.FetchQuery, error) {
	q, ok := r.store.fetchQueries[fp]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return q, nil
}

func newTestService(provider *fakeProvider, store *fakeStore) *IngestService {
	return NewIngestService(
		provider,
		store,
		&fakeTripRepo{store},
		&fakeLegRepo{store},
		&fakeDealRepo{store},
		&fakeFetchQueryRepo{store},
		nil,
		logger.NewNop(),
		nil,
		"flightsfinder",
		0,
	)
}

func successOutcome() entity.SearchOutcome {
	return entity.SearchOutcome{
		Finished:    true,
		Success:     true,
		Itineraries: []entity.Itinerary{testItinerary()},
	}
}

func TestScrapePersistsTheGraph(t *testing.T) {
	provider := &fakeProvider{outcomes: []entity.SearchOutcome{successOutcome()}}
	store := newFakeStore()
	svc := newTestService(provider, store)

	result, err := svc.Scrape(context.Background(), "VIE", "BCN", "2025-12-11", "2025-12-18")
	require.NoError(t, err)

	assert.Equal(t, 1, result.TripsScraped)
	assert.Len(t, store.flights, 2)
	assert.Len(t, store.trips, 1)
	assert.Len(t, store.legs, 2)
	assert.Len(t, store.deals, 2)
	assert.Len(t, store.fetchQueries, 1)

	fp := QueryFingerprint("VIE", "BCN", "2025-12-11", "2025-12-18")
	query, ok := store.fetchQueries[fp]
	require.True(t, ok)
	assert.False(t, query.LastFetchedAt.IsZero())
}

func TestScrapeIsIdempotent(t *testing.T) {
	store := newFakeStore()

	first := successOutcome()
	svc := newTestService(&fakeProvider{outcomes: []entity.SearchOutcome{first}}, store)
	_, err := svc.Scrape(context.Background(), "VIE", "BCN", "2025-12-11", "2025-12-18")
	require.NoError(t, err)

	// Second scrape of the same itinerary with a new price
	second := entity.SearchOutcome{Finished: true, Success: true}
	updated := testItinerary()
	updated.Prices[0].Price = 99.99
	updated.Prices[0].Link = "https://deep.example/b"
	second.Itineraries = []entity.Itinerary{updated}

	svc = newTestService(&fakeProvider{outcomes: []entity.SearchOutcome{second}}, store)
	_, err = svc.Scrape(context.Background(), "VIE", "BCN", "2025-12-11", "2025-12-18")
	require.NoError(t, err)

	assert.Len(t, store.flights, 2)
	assert.Len(t, store.trips, 1)
	assert.Len(t, store.deals, 2)
	assert.Len(t, store.fetchQueries, 1)

	var kiwi *entity.Deal
	for _, deal := range store.deals {
		if deal.Provider == "Kiwi.com" {
			kiwi = deal
		}
	}
	require.NotNil(t, kiwi)
	assert.Equal(t, 99.99, kiwi.Price)
	assert.Equal(t, "https://deep.example/b", kiwi.Link)
}

func TestScrapeTransportFailure(t *testing.T) {
	provider := &fakeProvider{outcomes: []entity.SearchOutcome{
		{Success: false, Message: "connection refused"},
	}}
	svc := newTestService(provider, newFakeStore())

	_, err := svc.Scrape(context.Background(), "VIE", "BCN", "2025-12-11", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestScrapeRangeExpandsCombinations(t *testing.T) {
	provider := &fakeProvider{outcomes: []entity.SearchOutcome{successOutcome()}}
	store := newFakeStore()
	svc := newTestService(provider, store)

	result, err := svc.ScrapeRange(context.Background(), "VIE", "BCN",
		DateRange{Start: "2025-12-11", End: "2025-12-13"},
		&DateRange{Start: "2025-12-18", End: "2025-12-19"},
	)
	require.NoError(t, err)

	assert.Equal(t, 6, result.CombinationsProcessed)
	assert.Equal(t, 0, result.CombinationsFailed)
	require.Len(t, provider.calls, 6)
	assert.Equal(t, "2025-12-11", provider.calls[0].DepartureDate)
	assert.Equal(t, "2025-12-18", provider.calls[0].ReturnDate)
	assert.Equal(t, "2025-12-13", provider.calls[5].DepartureDate)
	assert.Equal(t, "2025-12-19", provider.calls[5].ReturnDate)

	// One fetch query row per combination
	assert.Len(t, store.fetchQueries, 6)
}

func TestScrapeRangeOneWay(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider, newFakeStore())

	result, err := svc.ScrapeRange(context.Background(), "VIE", "BCN",
		DateRange{Start: "2025-12-11", End: "2025-12-12"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CombinationsProcessed)
	for _, call := range provider.calls {
		assert.Empty(t, call.ReturnDate)
	}
}

// A persistence failure mid-range aborts only that combination:
// earlier ones stay committed, later ones are still attempted.
func TestScrapeRangePersistenceFailureSkipsCombination(t *testing.T) {
	provider := &fakeProvider{outcomes: []entity.SearchOutcome{successOutcome()}}
	store := newFakeStore()
	// Five store calls per successful combination (4 record types +
	// fetch query); fail the first call of combination 4.
	store.failOnCall = 16
	svc := newTestService(provider, store)

	result, err := svc.ScrapeRange(context.Background(), "VIE", "BCN",
		DateRange{Start: "2025-12-11", End: "2025-12-13"},
		&DateRange{Start: "2025-12-18", End: "2025-12-19"},
	)
	require.NoError(t, err)

	assert.Equal(t, 5, result.CombinationsProcessed)
	assert.Equal(t, 1, result.CombinationsFailed)
	assert.Len(t, provider.calls, 6)
	assert.Len(t, store.fetchQueries, 5)
}

func TestScrapeRangeInvalidRange(t *testing.T) {
	svc := newTestService(&fakeProvider{}, newFakeStore())

	_, err := svc.ScrapeRange(context.Background(), "VIE", "BCN",
		DateRange{Start: "2025-12-13", End: "2025-12-11"}, nil)
	assert.Error(t, err)
}
