package index

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peroute/concierge/internal/db"
	"github.com/peroute/concierge/internal/domain"
)

// searcher is the consumer interface for vector KNN queries (ISP).
type searcher interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Config holds the index identity the repository queries against.
type Config struct {
	IndexName   string
	VectorField string
	KeyPrefix   string
	Dimensions  int
	HNSWM       int
	HNSWEFConst int
}

// Repo runs approximate KNN queries over the FT vector index and maps
// results back to scored catalog entries.
type Repo struct {
	searcher searcher
	cfg      Config
}

// New creates an index repository.
func New(s searcher, cfg Config) *Repo {
	return &Repo{searcher: s, cfg: cfg}
}

// Search runs a KNN query with the given candidate pool size and maps hits
// to scored entries in descending score order (the index already sorts by
// distance).
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid candidate pool size %d", k)
	}

	res, err := r.searcher.SearchKNN(ctx, &db.KNNQuery{
		IndexName:   r.cfg.IndexName,
		VectorField: r.cfg.VectorField,
		Vector:      vector,
		K:           k,
		ReturnFields: []string{
			"title", "description", "category", "url",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	entries := make([]domain.ScoredEntry, 0, len(res.Entries))
	for _, hit := range res.Entries {
		entries = append(entries, domain.ScoredEntry{
			Entry: domain.CatalogEntry{
				ID:          strings.TrimPrefix(hit.Key, r.cfg.KeyPrefix+"resource:"),
				Title:       hit.Fields["title"],
				Description: hit.Fields["description"],
				Category:    hit.Fields["category"],
				URL:         hit.Fields["url"],
			},
			Score: hit.Score,
		})
	}
	return entries, nil
}

// EnsureIndex creates the FT vector index if it does not exist yet.
// An index created by a concurrent instance is tolerated.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.searcher.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        r.cfg.IndexName,
		StorageType: db.StorageHash,
		Prefixes:    []string{r.cfg.KeyPrefix + "resource:"},
		Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldText},
			{Name: "description", Type: db.IndexFieldText},
			{Name: "category", Type: db.IndexFieldTag},
			{
				Name:              r.cfg.VectorField,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.cfg.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.cfg.HNSWM,
				VectorEFConstruct: r.cfg.HNSWEFConst,
			},
		},
	}

	if err := r.searcher.CreateIndex(ctx, def); err != nil {
		// Tolerate an index created by a concurrent instance.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}
