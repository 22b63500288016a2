// Package retriever issues sector-filtered nearest-neighbor queries against
// the vector store.
//
// The sector filter is a business rule, not an optimization: results from
// another sector never leave this package. Rows the store returns with a
// different sector are dropped and logged.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/pkg/types"
)

var (
	// ErrMissingSector is returned when a query has no sector to filter on
	ErrMissingSector = errors.New("sector filter is required")
	// ErrInvalidTopK is returned for a non-positive topK
	ErrInvalidTopK = errors.New("topK must be positive")
)

// Filter is the hard filter applied before similarity ranking
type Filter struct {
	SectorID string
}

// CandidateSearcher finds candidates near a vector
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error)
}

// OfferSearcher finds active offers near a vector
type OfferSearcher interface {
	SearchOffers(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredOffer, error)
}

// VectorStore is implemented by storage.SQLiteStorage
type VectorStore interface {
	CandidateSearcher
	OfferSearcher
}

// Retriever wraps a vector store with hard filtering
type Retriever struct {
	store  VectorStore
	logger *zap.Logger
}

// New creates a retriever over store
func New(store VectorStore, log *zap.Logger) *Retriever {
	return &Retriever{
		store:  store,
		logger: logger.Named(log, "retriever"),
	}
}

// FindSimilar returns up to topK candidates of the filter's sector nearest
// to vector, in store order. An empty result is not an error.
func (r *Retriever) FindSimilar(ctx context.Context, vector []float32, filter Filter, topK int) ([]types.ScoredCandidate, error) {
	if err := validate(filter, topK); err != nil {
		return nil, err
	}

	found, err := r.store.SearchCandidates(ctx, vector, filter.SectorID, topK)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	kept := make([]types.ScoredCandidate, 0, len(found))
	for _, sc := range found {
		if sc.Candidate == nil || !sameSector(sc.Candidate.SectorID, filter.SectorID) {
			continue
		}
		kept = append(kept, sc)
	}
	r.reportLeaks(len(found)-len(kept), filter.SectorID, "candidates")

	return truncate(kept, topK), nil
}

// FindSimilarOffers returns up to topK active offers of the filter's sector
// nearest to vector, in store order
func (r *Retriever) FindSimilarOffers(ctx context.Context, vector []float32, filter Filter, topK int) ([]types.ScoredOffer, error) {
	if err := validate(filter, topK); err != nil {
		return nil, err
	}

	found, err := r.store.SearchOffers(ctx, vector, filter.SectorID, topK)
	if err != nil {
		return nil, fmt.Errorf("search offers: %w", err)
	}

	kept := make([]types.ScoredOffer, 0, len(found))
	for _, so := range found {
		if so.Offer == nil || so.Offer.Status != types.OfferActive || !sameSector(so.Offer.SectorID, filter.SectorID) {
			continue
		}
		kept = append(kept, so)
	}
	r.reportLeaks(len(found)-len(kept), filter.SectorID, "offers")

	return truncate(kept, topK), nil
}

func (r *Retriever) reportLeaks(dropped int, sectorID, kind string) {
	if dropped == 0 {
		return
	}
	r.logger.Warn("dropped results outside the requested sector",
		zap.String("kind", kind),
		zap.String("sector_id", sectorID),
		zap.Int("dropped", dropped),
	)
}

func validate(filter Filter, topK int) error {
	if strings.TrimSpace(filter.SectorID) == "" {
		return ErrMissingSector
	}
	if topK <= 0 {
		return ErrInvalidTopK
	}
	return nil
}

func sameSector(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
