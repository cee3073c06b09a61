package repository

import (
	"context"

	"github.com/santistebanc/motia/internal/domain/entity"
)

// FetchQueryRepository defines the interface for search provenance rows
type FetchQueryRepository interface {
	Upsert(ctx context.Context, query *entity.FetchQuery) error
	FindByFingerprint(ctx context.Context, fingerprint string) (*entity.FetchQuery, error)
}
