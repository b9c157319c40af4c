package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/logger"
	"github.com/peroute/concierge/internal/metrics"
)

// Service ranks catalog entries against a query vector. The primary path is
// the approximate vector index; any primary failure falls back to an exact
// cosine scan over the stored catalog embeddings.
type Service struct {
	index    Index
	catalog  CatalogReader
	topK     int
	poolSize int
	minScore float64
}

// Config bounds the result set.
type Config struct {
	TopK          int     // entries returned to the caller
	CandidatePool int     // KNN candidate pool, at least 10x TopK
	MinScore      float64 // fallback scan similarity floor
}

// New creates a search service.
func New(index Index, catalog CatalogReader, cfg Config) *Service {
	return &Service{
		index:    index,
		catalog:  catalog,
		topK:     cfg.TopK,
		poolSize: cfg.CandidatePool,
		minScore: cfg.MinScore,
	}
}

// Search returns at most TopK entries sorted descending by similarity.
// It fails only on context cancellation; an unreachable index degrades to
// the local scan, and an empty catalog yields an empty result.
func (s *Service) Search(ctx context.Context, vector []float32) ([]domain.ScoredEntry, error) {
	entries, err := s.index.Search(ctx, vector, s.poolSize)
	if err == nil && len(entries) > 0 {
		return s.trim(entries), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// An empty hit list without an error usually means the index lost its
	// documents; the exact scan settles it either way.
	if err != nil {
		logger.FromContext(ctx).Warn("vector index unavailable, scanning catalog",
			zap.Error(err))
	}
	metrics.SearchFallbackTotal.Inc()

	return s.scanCatalog(ctx, vector)
}

// scanCatalog computes exact cosine similarity against every stored
// embedding. Entries are never re-embedded here; the stored vectors are the
// source of truth.
func (s *Service) scanCatalog(ctx context.Context, vector []float32) ([]domain.ScoredEntry, error) {
	snapshot, err := s.catalog.All(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.FromContext(ctx).Error("catalog snapshot unavailable", zap.Error(err))
		return nil, nil
	}

	scored := make([]domain.ScoredEntry, 0, len(snapshot))
	for _, entry := range snapshot {
		sim := domain.CosineSimilarity(vector, entry.Embedding)
		if sim <= s.minScore {
			continue
		}
		scored = append(scored, domain.ScoredEntry{Entry: entry, Score: sim})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return s.trim(scored), nil
}

func (s *Service) trim(entries []domain.ScoredEntry) []domain.ScoredEntry {
	if len(entries) > s.topK {
		return entries[:s.topK]
	}
	return entries
}
