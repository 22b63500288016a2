package storage

import (
	"context"
	"time"

	"github.com/juan975/cail-matching/pkg/types"
)

// Storage defines the interface for persisting and querying matching data
type Storage interface {
	// Offer operations
	UpsertOffer(ctx context.Context, offer *types.Offer) error
	GetOffer(ctx context.Context, offerID string) (*types.Offer, error)
	UpdateOfferEmbedding(ctx context.Context, offerID string, vector []float32) error

	// Candidate operations
	UpsertCandidate(ctx context.Context, candidate *types.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (*types.Candidate, error)
	GetCandidatesByIDs(ctx context.Context, candidateIDs []string) (map[string]*types.Candidate, error)

	// Application operations
	CreateApplication(ctx context.Context, app *types.Application) error
	GetApplication(ctx context.Context, applicationID string) (*types.Application, error)
	ApplicationExists(ctx context.Context, candidateID, offerID string, statuses []types.ApplicationStatus) (bool, error)
	CountApplicationsSince(ctx context.Context, candidateID string, since time.Time) (int, error)
	ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]*types.Application, error)
	ListApplicationsByOffer(ctx context.Context, offerID string) ([]*types.Application, error)
	UpdateApplicationStatus(ctx context.Context, applicationID string, status types.ApplicationStatus, at time.Time) error

	// Catalog operations
	UpsertCatalogEntry(ctx context.Context, entry *CatalogEntry) error
	CatalogEntryExists(ctx context.Context, kind types.CatalogKind, id string) (bool, error)
	ListCatalogEntries(ctx context.Context, kind types.CatalogKind) ([]*CatalogEntry, error)

	// Search operations
	SearchCandidates(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error)
	SearchOffers(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredOffer, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// CatalogEntry is one sector or hierarchy level
type CatalogEntry struct {
	ID          string
	Kind        types.CatalogKind
	Name        string
	Description string
	SortOrder   int
	Active      bool
}

// Status contains row counts and health of the store
type Status struct {
	Offers              int
	ActiveOffers        int
	Candidates          int
	CandidateEmbeddings int
	Applications        int
	OpenApplications    int
	SchemaVersion       string
	Health              HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	VectorExtension     bool
}
