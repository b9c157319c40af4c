package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peroute/concierge/internal/db"
	"github.com/peroute/concierge/internal/domain"
)

// store is the consumer interface for catalog entries (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores catalog entries as Redis hashes under <prefix>resource:<id>.
// It doubles as the snapshot source for the local fallback scan.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a catalog repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// EntryKeyPrefix returns the key prefix entries are stored under, for FT
// index definitions.
func (r *Repo) EntryKeyPrefix() string {
	return r.keyPrefix + "resource:"
}

func (r *Repo) entryKey(id string) string {
	return r.EntryKeyPrefix() + id
}

// Put creates or replaces a catalog entry.
func (r *Repo) Put(ctx context.Context, e domain.CatalogEntry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", domain.ErrInvalidEntry)
	}
	if err := r.store.HSet(ctx, r.entryKey(e.ID), buildHashFields(e)); err != nil {
		return fmt.Errorf("put entry %s: %w", e.ID, err)
	}
	return nil
}

// Get returns a catalog entry by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.CatalogEntry, error) {
	key := r.entryKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("check entry %s: %w", id, err)
	}
	if !exists {
		return domain.CatalogEntry{}, domain.ErrEntryNotFound
	}

	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.CatalogEntry{}, domain.ErrEntryNotFound
		}
		return domain.CatalogEntry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a catalog entry. Deleting a missing entry is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.entryKey(id)); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// All reads the full catalog snapshot: every entry with its stored
// embedding. Used by the fallback scan and the list endpoint.
func (r *Repo) All(ctx context.Context) ([]domain.CatalogEntry, error) {
	prefix := r.EntryKeyPrefix()

	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue // key expired between SCAN and HGETALL
		}
		id := strings.TrimPrefix(keys[i], prefix)
		entries = append(entries, parseHashFields(id, m))
	}
	return entries, nil
}
