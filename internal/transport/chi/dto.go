package chi

import (
	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/usecase/health"
)

// Error codes returned in error responses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "resource_not_found"
	codeBackendError     = "generative_backend_error"
	codeEmbeddingError   = "embedding_provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer    string         `json:"answer"`
	Intent    string         `json:"intent"`
	Resources []resourceItem `json:"resources,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Items []resourceItem `json:"items"`
	Total int            `json:"total"`
}

type resourceItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	URL         string   `json:"url"`
	Score       *float64 `json:"score,omitempty"`
}

type resourceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	URL         string `json:"url"`
}

type batchCreateRequest struct {
	Resources []resourceRequest `json:"resources"`
}

type batchCreateResponse struct {
	Items []resourceItem `json:"items"`
	Count int            `json:"count"`
}

type resourceListResponse struct {
	Items []resourceItem `json:"items"`
	Total int            `json:"total"`
}

type healthResponse struct {
	Status string                        `json:"status"`
	Checks map[string]health.CheckResult `json:"checks"`
}

func entryToItem(e domain.CatalogEntry) resourceItem {
	return resourceItem{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		URL:         e.URL,
	}
}

func scoredToItem(se domain.ScoredEntry) resourceItem {
	item := entryToItem(se.Entry)
	score := se.Score
	item.Score = &score
	return item
}

func entryFromRequest(req resourceRequest) domain.CatalogEntry {
	return domain.CatalogEntry{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		URL:         req.URL,
	}
}
