// Package catalog handles resource ingestion with automatic vectorization.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/peroute/concierge/internal/domain"
)

// Service handles catalog entry CRUD. Every write embeds the entry's
// composite text so the stored vector always matches the stored content.
type Service struct {
	repo       Repository
	vectorizer domain.Vectorizer
}

// New creates a catalog service.
func New(repo Repository, vectorizer domain.Vectorizer) *Service {
	return &Service{repo: repo, vectorizer: vectorizer}
}

// Create ingests a new entry, assigning an ID and embedding its text.
func (s *Service) Create(ctx context.Context, e domain.CatalogEntry) (domain.CatalogEntry, error) {
	if err := validate(e); err != nil {
		return domain.CatalogEntry{}, err
	}

	e.ID = uuid.NewString()
	if err := s.embed(ctx, &e); err != nil {
		return domain.CatalogEntry{}, err
	}

	if err := s.repo.Put(ctx, e); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("store entry: %w", err)
	}
	return e, nil
}

// Update replaces an existing entry's content and re-embeds it.
func (s *Service) Update(ctx context.Context, e domain.CatalogEntry) (domain.CatalogEntry, error) {
	if e.ID == "" {
		return domain.CatalogEntry{}, fmt.Errorf("%w: missing id", domain.ErrInvalidEntry)
	}
	if err := validate(e); err != nil {
		return domain.CatalogEntry{}, err
	}

	if _, err := s.repo.Get(ctx, e.ID); err != nil {
		return domain.CatalogEntry{}, err
	}

	if err := s.embed(ctx, &e); err != nil {
		return domain.CatalogEntry{}, err
	}

	if err := s.repo.Put(ctx, e); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("store entry: %w", err)
	}
	return e, nil
}

// Get returns an entry by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.CatalogEntry, error) {
	return s.repo.Get(ctx, id)
}

// List returns all catalog entries without embeddings; the vectors are an
// implementation detail of search.
func (s *Service) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	for i := range entries {
		entries[i].Embedding = nil
	}
	return entries, nil
}

// Delete removes an entry by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// CreateBatch ingests entries one by one, embedding each. Returns the stored
// entries; the first failure aborts the rest.
func (s *Service) CreateBatch(ctx context.Context, entries []domain.CatalogEntry) ([]domain.CatalogEntry, error) {
	out := make([]domain.CatalogEntry, 0, len(entries))
	for i, e := range entries {
		stored, err := s.Create(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s *Service) embed(ctx context.Context, e *domain.CatalogEntry) error {
	vec, err := s.vectorizer.Embed(ctx, e.CompositeText())
	if err != nil {
		return fmt.Errorf("vectorize entry: %w", err)
	}
	e.Embedding = vec
	return nil
}

func validate(e domain.CatalogEntry) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidEntry)
	}
	if strings.TrimSpace(e.URL) == "" {
		return fmt.Errorf("%w: url is required", domain.ErrInvalidEntry)
	}
	return nil
}
