package vectorizer

import (
	"context"

	"go.uber.org/zap"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/logger"
)

// Fallback decorates a hosted vectorizer with a local one. Provider errors
// are absorbed: the caller always gets a vector, so a provider outage
// degrades search quality instead of failing the request.
//
// Cancellation is the one exception; a dead context propagates.
type Fallback struct {
	primary domain.Vectorizer
	local   domain.Vectorizer
}

// NewFallback creates a fallback vectorizer.
func NewFallback(primary, local domain.Vectorizer) *Fallback {
	return &Fallback{primary: primary, local: local}
}

// Embed tries the primary provider and falls back to the local vectorizer.
func (f *Fallback) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := f.primary.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.FromContext(ctx).Warn("primary vectorizer failed, using local",
		zap.Error(err))
	return f.local.Embed(ctx, text)
}

// EmbedBatch tries the primary provider and falls back to the local
// vectorizer for the whole batch. Mixing providers inside one batch would
// produce incomparable vectors.
func (f *Fallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := f.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return vecs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.FromContext(ctx).Warn("primary batch vectorizer failed, using local",
		zap.Error(err))
	return f.local.EmbedBatch(ctx, texts)
}
