// Package chi implements the HTTP API on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/peroute/concierge/internal/domain"
	askuc "github.com/peroute/concierge/internal/usecase/ask"
	cataloguc "github.com/peroute/concierge/internal/usecase/catalog"
	healthuc "github.com/peroute/concierge/internal/usecase/health"
)

const maxBatchSize = 100

// Searcher ranks catalog entries against a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32) ([]domain.ScoredEntry, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the query pipeline and catalog ingestion over HTTP.
type Server struct {
	ask           *askuc.Service
	catalog       *cataloguc.Service
	searcher      Searcher
	vectorizer    domain.Vectorizer
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ask *askuc.Service,
	catalog *cataloguc.Service,
	searcher Searcher,
	vectorizer domain.Vectorizer,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ask:        ask,
		catalog:    catalog,
		searcher:   searcher,
		vectorizer: vectorizer,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEntryNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidEntry, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrGenerativeUnavailable, http.StatusBadGateway, codeBackendError),
		sentinelHandler(domain.ErrNoCandidates, http.StatusBadGateway, codeBackendError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// Routes registers the API on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/ask", s.Ask)
	r.Post("/v1/search", s.Search)

	r.Route("/v1/resources", func(r chi.Router) {
		r.Post("/", s.CreateResource)
		r.Get("/", s.ListResources)
		r.Post("/batch", s.BatchCreateResources)
		r.Get("/{id}", s.GetResource)
		r.Put("/{id}", s.UpdateResource)
		r.Delete("/{id}", s.DeleteResource)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}

	answer, err := s.ask.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := askResponse{
		Answer: answer.Text,
		Intent: string(answer.Intent.Kind),
	}
	for _, se := range answer.Results {
		resp.Resources = append(resp.Resources, scoredToItem(se))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /v1/search: embeds the query and ranks entries without
// the conversational wrapper.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	vector, err := s.vectorizer.Embed(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	entries, err := s.searcher.Search(r.Context(), vector)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchResponse{Items: []resourceItem{}, Total: len(entries)}
	for _, se := range entries {
		resp.Items = append(resp.Items, scoredToItem(se))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateResource handles POST /v1/resources.
func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry, err := s.catalog.Create(r.Context(), entryFromRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/resources/"+entry.ID)
	writeJSON(w, http.StatusCreated, entryToItem(entry))
}

// BatchCreateResources handles POST /v1/resources/batch.
func (s *Server) BatchCreateResources(w http.ResponseWriter, r *http.Request) {
	var req batchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Resources) == 0 || len(req.Resources) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"resources count must be between 1 and 100")
		return
	}

	entries := make([]domain.CatalogEntry, 0, len(req.Resources))
	for _, item := range req.Resources {
		entries = append(entries, entryFromRequest(item))
	}

	stored, err := s.catalog.CreateBatch(r.Context(), entries)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := batchCreateResponse{Count: len(stored)}
	for _, e := range stored {
		resp.Items = append(resp.Items, entryToItem(e))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListResources handles GET /v1/resources.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := resourceListResponse{Items: []resourceItem{}, Total: len(entries)}
	for _, e := range entries {
		resp.Items = append(resp.Items, entryToItem(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetResource handles GET /v1/resources/{id}.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToItem(entry))
}

// UpdateResource handles PUT /v1/resources/{id}.
func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry := entryFromRequest(req)
	entry.ID = chi.URLParam(r, "id")

	updated, err := s.catalog.Update(r.Context(), entry)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToItem(updated))
}

// DeleteResource handles DELETE /v1/resources/{id}.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEntryNotFound,
		domain.ErrInvalidEntry,
		domain.ErrGenerativeUnavailable,
		domain.ErrNoCandidates,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
