package domain

import "context"

// Vectorizer is the shared text vectorization contract between layers.
// Implementations return vectors of a fixed dimension; empty or
// whitespace-only input yields the zero vector.
type Vectorizer interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// TextGenerator is the generative-language backend contract. The prompt is
// an ordered list of text segments; the result is the first candidate's
// text. A failed call or an empty candidate list is a hard error wrapped
// with ErrGenerativeUnavailable.
type TextGenerator interface {
	Generate(ctx context.Context, segments ...string) (string, error)
}

// HealthChecker verifies external collaborator availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
