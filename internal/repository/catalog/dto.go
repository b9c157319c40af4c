package catalog

import (
	"github.com/peroute/concierge/internal/db"
	"github.com/peroute/concierge/internal/domain"
)

// Hash field names for catalog entry records.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldURL         = "url"
	fieldEmbedding   = "embedding"
)

// buildHashFields converts a catalog entry into a flat map[string]string for HSET.
// The embedding is stored as little-endian FLOAT32 binary, the layout the
// FT vector index reads directly.
func buildHashFields(e domain.CatalogEntry) map[string]string {
	return map[string]string{
		fieldTitle:       e.Title,
		fieldDescription: e.Description,
		fieldCategory:    e.Category,
		fieldURL:         e.URL,
		fieldEmbedding:   string(db.VectorToBytes(e.Embedding)),
	}
}

// parseHashFields converts a flat hash map back into a catalog entry.
// A corrupt embedding is dropped rather than failing the read; the entry is
// still usable for display and the fallback scan simply skips it.
func parseHashFields(id string, m map[string]string) domain.CatalogEntry {
	entry := domain.CatalogEntry{
		ID:          id,
		Title:       m[fieldTitle],
		Description: m[fieldDescription],
		Category:    m[fieldCategory],
		URL:         m[fieldURL],
	}
	if raw, ok := m[fieldEmbedding]; ok && raw != "" {
		if vec, err := db.BytesToVector([]byte(raw)); err == nil {
			entry.Embedding = vec
		}
	}
	return entry
}
