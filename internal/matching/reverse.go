package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/internal/retriever"
	"github.com/juan975/cail-matching/internal/scoring"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

// OffersForCandidate ranks the active offers of the candidate's sector for
// that candidate. limit <= 0 uses the configured reverse result size.
func (o *Orchestrator) OffersForCandidate(ctx context.Context, candidateID string, limit int) ([]types.OfferMatch, error) {
	log := o.logger.With(zap.String(logger.FieldCandidateID, candidateID))
	if limit <= 0 {
		limit = o.cfg.ReverseMaxResults
	}

	candidate, err := o.deps.Candidates.GetCandidate(ctx, candidateID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && candidate == nil) {
		return nil, types.NewCandidateNotFoundError(candidateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}

	// Without a sector there is nothing to filter on, and unfiltered results
	// must never be returned.
	if strings.TrimSpace(candidate.SectorID) == "" {
		log.Warn("candidate has no sector, returning no offers")
		return []types.OfferMatch{}, nil
	}

	vector := candidate.Embedding
	if len(vector) == 0 {
		log.Debug("candidate has no stored embedding, computing one")
		vector, err = o.deps.Embedder.Embed(ctx, CandidateText(candidate))
		if err != nil {
			return nil, err
		}
	}

	found, err := o.deps.Retriever.FindSimilarOffers(ctx, vector, retriever.Filter{SectorID: candidate.SectorID}, o.cfg.ReverseTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve offers for candidate %s: %w", candidateID, err)
	}

	results := make([]types.OfferMatch, 0, len(found))
	for _, so := range found {
		results = append(results, o.deps.Scorer.ScoreOffer(candidate, so.Offer, so.Similarity))
	}
	ranked := scoring.RankOffers(results, limit)

	log.Info("reverse matching completed",
		zap.Int("retrieved", len(found)),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}
