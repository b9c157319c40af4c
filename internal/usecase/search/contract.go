package search

import (
	"context"

	"github.com/peroute/concierge/internal/domain"
)

// Index is the approximate KNN backend.
type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error)
}

// CatalogReader provides the full catalog snapshot for the exact scan.
type CatalogReader interface {
	All(ctx context.Context) ([]domain.CatalogEntry, error)
}
