package catalog

import (
	"context"

	"github.com/peroute/concierge/internal/domain"
)

// Repository defines the storage contract for catalog entries.
type Repository interface {
	Put(ctx context.Context, e domain.CatalogEntry) error
	Get(ctx context.Context, id string) (domain.CatalogEntry, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]domain.CatalogEntry, error)
}
