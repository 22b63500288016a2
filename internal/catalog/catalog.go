// Package catalog resolves sector and hierarchy-level references.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/juan975/cail-matching/pkg/types"
)

// Catalog answers whether a sector or level reference exists
type Catalog interface {
	SectorExists(ctx context.Context, id string) (bool, error)
	LevelExists(ctx context.Context, id string) (bool, error)
}

// Static is an in-memory catalog, used by tests and offline tooling
type Static struct {
	sectors map[string]struct{}
	levels  map[string]struct{}
}

// NewStatic builds a catalog holding exactly the given IDs
func NewStatic(sectors, levels []string) *Static {
	s := &Static{
		sectors: make(map[string]struct{}, len(sectors)),
		levels:  make(map[string]struct{}, len(levels)),
	}
	for _, id := range sectors {
		s.sectors[id] = struct{}{}
	}
	for _, id := range levels {
		s.levels[id] = struct{}{}
	}
	return s
}

func (s *Static) SectorExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.sectors[id]
	return ok, nil
}

func (s *Static) LevelExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.levels[id]
	return ok, nil
}

// EntryLookup is the storage method the Store catalog relies on
type EntryLookup interface {
	CatalogEntryExists(ctx context.Context, kind types.CatalogKind, id string) (bool, error)
}

// Store resolves references against the catalog_entries table
type Store struct {
	lookup EntryLookup
}

// NewStore wraps a storage lookup
func NewStore(lookup EntryLookup) *Store {
	return &Store{lookup: lookup}
}

func (s *Store) SectorExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, types.CatalogSector, id)
}

func (s *Store) LevelExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, types.CatalogLevel, id)
}

func (s *Store) exists(ctx context.Context, kind types.CatalogKind, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	ok, err := s.lookup.CatalogEntryExists(ctx, kind, id)
	if err != nil {
		return false, fmt.Errorf("lookup %s %s: %w", kind, id, err)
	}
	return ok, nil
}

// DefaultCacheTTL bounds how long a cached positive lookup is trusted
const DefaultCacheTTL = 30 * time.Second

// Cached remembers positive lookups of another catalog for at most ttl.
// Negative answers are never cached so entries added later resolve right
// away. Entries deactivated elsewhere stop resolving once their ttl expires,
// or immediately after Invalidate.
type Cached struct {
	inner Catalog
	cache *expirable.LRU[string, struct{}]
}

// NewCached wraps inner with an expiring LRU of the given size. Non-positive
// size and ttl fall back to 256 entries and DefaultCacheTTL.
func NewCached(inner Catalog, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{inner: inner, cache: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Invalidate drops every cached lookup. Call it after writing catalog entries.
func (c *Cached) Invalidate() {
	c.cache.Purge()
}

func (c *Cached) SectorExists(ctx context.Context, id string) (bool, error) {
	return c.lookup(ctx, types.CatalogSector, id, c.inner.SectorExists)
}

func (c *Cached) LevelExists(ctx context.Context, id string) (bool, error) {
	return c.lookup(ctx, types.CatalogLevel, id, c.inner.LevelExists)
}

// Len returns the number of cached positive lookups
func (c *Cached) Len() int {
	return c.cache.Len()
}

func (c *Cached) lookup(ctx context.Context, kind types.CatalogKind, id string, fetch func(context.Context, string) (bool, error)) (bool, error) {
	key := string(kind) + ":" + id
	if c.cache.Contains(key) {
		return true, nil
	}
	ok, err := fetch(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		c.cache.Add(key, struct{}{})
	}
	return ok, nil
}
