// Package admission decides whether a candidate may submit an application
// and records it.
//
// Apply runs every check and the insert inside one storage transaction.
// The store serializes transactions, so two concurrent calls can't both
// pass the duplicate or quota checks. A partial unique index over open
// applications backs up the duplicate rule at the storage level.
package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

// ErrInvalidArgument is returned for empty identifiers
var ErrInvalidArgument = errors.New("invalid argument")

// Workflow enforces the admission rules
type Workflow struct {
	store  storage.Storage
	cfg    config.AdmissionConfig
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures a Workflow
type Option func(*Workflow)

// WithClock replaces time.Now. The day boundary is midnight in the
// location of the returned times.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithIDGenerator replaces uuid.NewString
func WithIDGenerator(newID func() string) Option {
	return func(w *Workflow) {
		w.newID = newID
	}
}

// NewWorkflow creates a workflow over store
func NewWorkflow(store storage.Storage, cfg config.AdmissionConfig, log *zap.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.Named(log, "admission"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Apply submits an application and returns its ID
func (w *Workflow) Apply(ctx context.Context, candidateID, offerID string) (string, error) {
	return w.ApplyWithScore(ctx, candidateID, offerID, nil)
}

// ApplyWithScore is Apply carrying over the match score the candidate was
// shown, if any
func (w *Workflow) ApplyWithScore(ctx context.Context, candidateID, offerID string, matchScore *float64) (id string, err error) {
	if err := requireIDs(candidateID, offerID); err != nil {
		return "", err
	}
	log := w.logger.With(zap.String(logger.FieldCandidateID, candidateID), zap.String(logger.FieldOfferID, offerID))

	tx, err := w.store.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	app, err := w.admit(ctx, tx, candidateID, offerID, matchScore)
	if err != nil {
		log.Debug("application rejected", zap.Error(err))
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit application: %w", err)
	}

	log.Info("application accepted", zap.String("application_id", app.ID))
	return app.ID, nil
}

// admit runs the checks in order, each short-circuiting
func (w *Workflow) admit(ctx context.Context, tx storage.Tx, candidateID, offerID string, matchScore *float64) (*types.Application, error) {
	// 1. Offer must exist
	if _, err := tx.GetOffer(ctx, offerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewOfferNotFoundError(offerID)
		}
		return nil, fmt.Errorf("load offer %s: %w", offerID, err)
	}

	// 2. No open application for the pair
	open, err := tx.ApplicationExists(ctx, candidateID, offerID, types.OpenStatuses)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, types.NewDuplicateApplicationError(candidateID, offerID)
	}

	// 3. Daily quota
	now := w.now()
	count, err := tx.CountApplicationsSince(ctx, candidateID, StartOfDay(now))
	if err != nil {
		return nil, err
	}
	if count >= w.cfg.MaxDailyApplications {
		return nil, types.NewDailyApplicationLimitError(candidateID, w.cfg.MaxDailyApplications)
	}

	// 4. Persist
	app := &types.Application{
		ID:          w.newID(),
		CandidateID: candidateID,
		OfferID:     offerID,
		SubmittedAt: now,
		Status:      types.StatusPending,
		MatchScore:  matchScore,
		UpdatedAt:   now,
	}
	if err := tx.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, types.NewDuplicateApplicationError(candidateID, offerID)
		}
		return nil, err
	}
	return app, nil
}

// ListMyApplications returns a candidate's applications, newest first
func (w *Workflow) ListMyApplications(ctx context.Context, candidateID string) ([]*types.Application, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fmt.Errorf("%w: candidate id is required", ErrInvalidArgument)
	}
	return w.store.ListApplicationsByCandidate(ctx, candidateID)
}

// ListOfferApplications returns an offer's applications, newest first
func (w *Workflow) ListOfferApplications(ctx context.Context, offerID string) ([]*types.Application, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, fmt.Errorf("%w: offer id is required", ErrInvalidArgument)
	}
	if _, err := w.store.GetOffer(ctx, offerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewOfferNotFoundError(offerID)
		}
		return nil, fmt.Errorf("load offer %s: %w", offerID, err)
	}
	return w.store.ListApplicationsByOffer(ctx, offerID)
}

// ListOfferApplicationsWithCandidates is ListOfferApplications with each
// applicant's profile attached. Unknown profiles are left nil.
func (w *Workflow) ListOfferApplicationsWithCandidates(ctx context.Context, offerID string) ([]*types.ApplicationWithCandidate, error) {
	apps, err := w.ListOfferApplications(ctx, offerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		if _, ok := seen[a.CandidateID]; ok {
			continue
		}
		seen[a.CandidateID] = struct{}{}
		ids = append(ids, a.CandidateID)
	}

	profiles, err := w.store.GetCandidatesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load applicants: %w", err)
	}

	out := make([]*types.ApplicationWithCandidate, len(apps))
	for i, a := range apps {
		out[i] = &types.ApplicationWithCandidate{Application: *a, Candidate: profiles[a.CandidateID]}
	}
	return out, nil
}

// UpdateStatus moves an application to a new status and returns it
func (w *Workflow) UpdateStatus(ctx context.Context, applicationID string, status types.ApplicationStatus) (app *types.Application, err error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("%w: application id is required", ErrInvalidArgument)
	}

	tx, err := w.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	app, err = tx.GetApplication(ctx, applicationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, err
	}

	if !types.IsTransitionAllowed(app.Status, status) {
		return nil, types.NewInvalidStatusTransitionError(app.Status, status)
	}

	now := w.now()
	if err = tx.UpdateApplicationStatus(ctx, applicationID, status, now); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, types.NewDuplicateApplicationError(app.CandidateID, app.OfferID)
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	app.Status = status
	app.UpdatedAt = now
	w.logger.Info("application status updated",
		zap.String("application_id", applicationID),
		zap.String("status", string(status)),
	)
	return app, nil
}

// StartOfDay returns local midnight of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func requireIDs(candidateID, offerID string) error {
	if strings.TrimSpace(candidateID) == "" {
		return fmt.Errorf("%w: candidate id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(offerID) == "" {
		return fmt.Errorf("%w: offer id is required", ErrInvalidArgument)
	}
	return nil
}
