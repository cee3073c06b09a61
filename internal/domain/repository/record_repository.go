package repository

import (
	"context"

	"github.com/santistebanc/motia/internal/domain/entity"
)

// FlightRepository defines the interface for flight persistence
type FlightRepository interface {
	UpsertMany(ctx context.Context, flights []*entity.Flight) error
}

// TripRepository defines the interface for trip persistence
type TripRepository interface {
	UpsertMany(ctx context.Context, trips []*entity.Trip) error
}

// LegRepository defines the interface for leg persistence
type LegRepository interface {
	UpsertMany(ctx context.Context, legs []*entity.Leg) error
}

// DealRepository defines the interface for deal persistence
type DealRepository interface {
	UpsertMany(ctx context.Context, deals []*entity.Deal) error
}
