package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/peroute/concierge/internal/db"
	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/logger"
	"github.com/peroute/concierge/internal/metrics"
)

// kvStore is the consumer interface for cached vectors (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Vectorizer is a caching decorator around a domain.Vectorizer. Vectors are
// keyed by the SHA-256 of the input text and stored as little-endian FLOAT32
// binary, the same layout the catalog hashes use.
//
// Cache failures never fail the embedding: a read miss or write error falls
// through to the inner vectorizer.
type Vectorizer struct {
	inner     domain.Vectorizer
	store     kvStore
	keyPrefix string
}

// New creates a caching vectorizer.
func New(inner domain.Vectorizer, store kvStore, keyPrefix string) *Vectorizer {
	return &Vectorizer{inner: inner, store: store, keyPrefix: keyPrefix}
}

// Embed returns the cached vector for text, or embeds and caches it.
func (v *Vectorizer) Embed(ctx context.Context, text string) ([]float32, error) {
	key := v.cacheKey(text)

	if cached, err := v.store.Get(ctx, key); err == nil {
		if vec, perr := db.BytesToVector(cached); perr == nil {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return vec, nil
		}
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		logger.FromContext(ctx).Warn("embedding cache read failed", zap.Error(err))
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	vec, err := v.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := v.store.Set(ctx, key, db.VectorToBytes(vec)); err != nil {
		logger.FromContext(ctx).Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}

// EmbedBatch embeds texts individually so each one hits the cache.
func (v *Vectorizer) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := v.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", len(out), err)
		}
		out = append(out, vec)
	}
	return out, nil
}

func (v *Vectorizer) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return v.keyPrefix + "emb_cache:" + hex.EncodeToString(sum[:])
}
