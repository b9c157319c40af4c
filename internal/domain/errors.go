package domain

import "errors"

var (
	// ErrEntryNotFound signals a missing catalog entry.
	ErrEntryNotFound = errors.New("catalog entry not found")
	// ErrGenerativeUnavailable signals that the generative backend is
	// unreachable or returned a non-success status.
	ErrGenerativeUnavailable = errors.New("generative backend unavailable")
	// ErrNoCandidates signals an empty or malformed candidate list from the
	// generative backend.
	ErrNoCandidates = errors.New("no valid response candidates")
	// ErrEmbeddingProviderError signals a hosted embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidEntry signals a catalog entry that fails validation.
	ErrInvalidEntry = errors.New("invalid catalog entry")
)
