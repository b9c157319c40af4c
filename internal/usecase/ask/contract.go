package ask

import (
	"context"

	"github.com/peroute/concierge/internal/domain"
)

// Classifier resolves user text into an intent.
type Classifier interface {
	Classify(ctx context.Context, userText string) (domain.Intent, error)
}

// Searcher ranks catalog entries against a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32) ([]domain.ScoredEntry, error)
}

// Synthesizer composes the final answer text.
type Synthesizer interface {
	Synthesize(ctx context.Context, question, draft string, entries []domain.ScoredEntry) string
}
