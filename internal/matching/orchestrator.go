package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/juan975/cail-matching/internal/catalog"
	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/internal/retriever"
	"github.com/juan975/cail-matching/internal/scoring"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

// State is a step of a matching run
type State string

const (
	StateValidatingOffer    State = "VALIDATING_OFFER"
	StateValidatingCatalogs State = "VALIDATING_CATALOGS"
	StateEmbedding          State = "EMBEDDING"
	StateRetrieving         State = "RETRIEVING"
	StateScoring            State = "SCORING"
	StateDone               State = "DONE"
)

// OfferStore loads offers and keeps their query vectors.
// GetOffer returns an error wrapping storage.ErrNotFound for unknown IDs.
type OfferStore interface {
	GetOffer(ctx context.Context, offerID string) (*types.Offer, error)
	UpdateOfferEmbedding(ctx context.Context, offerID string, vector []float32) error
}

// CandidateSource loads candidate profiles.
// GetCandidate returns an error wrapping storage.ErrNotFound for unknown IDs.
type CandidateSource interface {
	GetCandidate(ctx context.Context, candidateID string) (*types.Candidate, error)
}

// Embedder turns text into a query vector. Implementations are expected to
// retry and bound each call, as embedder.Resilient does.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever runs hard-filtered KNN queries
type Retriever interface {
	FindSimilar(ctx context.Context, vector []float32, filter retriever.Filter, topK int) ([]types.ScoredCandidate, error)
	FindSimilarOffers(ctx context.Context, vector []float32, filter retriever.Filter, topK int) ([]types.ScoredOffer, error)
}

// Deps are the collaborators of an Orchestrator
type Deps struct {
	Offers     OfferStore
	Candidates CandidateSource
	Catalog    catalog.Catalog
	Embedder   Embedder
	Retriever  Retriever
	Scorer     *scoring.Engine
}

// Orchestrator executes matching runs. It holds no per-run state and is
// safe for concurrent use.
type Orchestrator struct {
	cfg    config.MatchingConfig
	deps   Deps
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(cfg config.MatchingConfig, deps Deps, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logger.Named(log, "matching"),
	}
}

// ExecuteMatching ranks the candidates of an offer's sector against it.
// An empty retrieval yields an empty list.
func (o *Orchestrator) ExecuteMatching(ctx context.Context, offerID string) ([]types.MatchResult, error) {
	start := time.Now()
	log := o.logger.With(zap.String(logger.FieldOfferID, offerID))

	o.enter(log, StateValidatingOffer)
	offer, err := o.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	o.enter(log, StateValidatingCatalogs)
	if err := o.validateCatalogs(ctx, offer); err != nil {
		return nil, err
	}

	o.enter(log, StateEmbedding)
	vector, err := o.deps.Embedder.Embed(ctx, OfferText(offer))
	if err != nil {
		return nil, err
	}
	o.storeOfferEmbedding(ctx, log, offer.ID, vector)

	o.enter(log, StateRetrieving)
	found, err := o.deps.Retriever.FindSimilar(ctx, vector, retriever.Filter{SectorID: offer.SectorID}, o.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates for offer %s: %w", offer.ID, err)
	}

	o.enter(log, StateScoring)
	results, err := o.scoreAll(ctx, offer, found)
	if err != nil {
		return nil, err
	}
	ranked := scoring.Rank(results, o.cfg.MaxResults)

	o.enter(log, StateDone)
	log.Info("matching completed",
		zap.Int("retrieved", len(found)),
		zap.Int("returned", len(ranked)),
		zap.Duration("duration", time.Since(start)),
	)
	return ranked, nil
}

func (o *Orchestrator) enter(log *zap.Logger, s State) {
	log.Debug("state transition", zap.String("state", string(s)))
}

func (o *Orchestrator) loadOffer(ctx context.Context, offerID string) (*types.Offer, error) {
	offer, err := o.deps.Offers.GetOffer(ctx, offerID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && offer == nil) {
		return nil, types.NewOfferNotFoundError(offerID)
	}
	if err != nil {
		return nil, fmt.Errorf("load offer %s: %w", offerID, err)
	}
	return offer, nil
}

// validateCatalogs checks the sector and level references concurrently
func (o *Orchestrator) validateCatalogs(ctx context.Context, offer *types.Offer) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ok, err := o.deps.Catalog.SectorExists(gctx, offer.SectorID)
		if err != nil {
			return fmt.Errorf("check sector %s: %w", offer.SectorID, err)
		}
		if !ok {
			return types.NewInvalidCatalogReferenceError(types.CatalogSector, offer.SectorID)
		}
		return nil
	})

	g.Go(func() error {
		ok, err := o.deps.Catalog.LevelExists(gctx, offer.LevelID)
		if err != nil {
			return fmt.Errorf("check level %s: %w", offer.LevelID, err)
		}
		if !ok {
			return types.NewInvalidCatalogReferenceError(types.CatalogLevel, offer.LevelID)
		}
		return nil
	})

	return g.Wait()
}

// storeOfferEmbedding keeps the query vector on the offer row. Errors are
// logged and otherwise ignored.
func (o *Orchestrator) storeOfferEmbedding(ctx context.Context, log *zap.Logger, offerID string, vector []float32) {
	if err := o.deps.Offers.UpdateOfferEmbedding(ctx, offerID, vector); err != nil {
		log.Warn("failed to store offer embedding", zap.Error(err))
	}
}

func (o *Orchestrator) scoreAll(ctx context.Context, offer *types.Offer, found []types.ScoredCandidate) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(found))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sc := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = o.deps.Scorer.Score(sc.Candidate, offer, sc.Similarity)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// OfferText is the text embedded for an offer: title, description, then
// mandatory and desirable skill names, space-joined. Empty parts are skipped.
func OfferText(offer *types.Offer) string {
	parts := make([]string, 0, 2+len(offer.MandatorySkills)+len(offer.DesirableSkills))
	parts = append(parts, offer.Title, offer.Description)
	parts = append(parts, types.SkillNames(offer.MandatorySkills)...)
	parts = append(parts, types.SkillNames(offer.DesirableSkills)...)
	return joinNonEmpty(parts, " ")
}

// CandidateText is the text embedded for a candidate without a stored
// embedding
func CandidateText(c *types.Candidate) string {
	return fmt.Sprintf("Professional with skills in: %s. Level: %s. Sector: %s.",
		strings.Join(c.Skills, ", "), c.LevelID, c.SectorID)
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
