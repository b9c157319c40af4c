package domain

import "strings"

// CatalogEntry is one searchable resource record. Entries are owned by the
// document store; the query pipeline only reads them. The embedding is
// produced once at ingest time and refreshed when title or description change.
type CatalogEntry struct {
	ID          string
	Title       string
	Description string
	Category    string
	URL         string
	Embedding   []float32
}

// CompositeText is the text that gets embedded for an entry.
func (e CatalogEntry) CompositeText() string {
	return strings.TrimSpace(e.Title + " " + e.Description)
}

// ScoredEntry pairs a catalog entry with a similarity score.
// Lists of ScoredEntry handed to the synthesizer are sorted descending by
// score and hold at most the requested limit.
type ScoredEntry struct {
	Entry CatalogEntry
	Score float64
}
