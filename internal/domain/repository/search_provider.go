package repository

import (
	"context"

	"github.com/santistebanc/motia/internal/domain/entity"
)

// SearchProvider drives one search job against the fare site to
// completion and returns the extracted itineraries.
type SearchProvider interface {
	Search(ctx context.Context, params entity.SearchParams) entity.SearchOutcome
}
