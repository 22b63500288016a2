package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected domain failures
var (
	// ErrOfferNotFound is returned when a referenced offer does not exist
	ErrOfferNotFound = errors.New("offer not found")

	// ErrCandidateNotFound is returned when a referenced candidate does not exist
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrApplicationNotFound is returned when a referenced application does not exist
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidCatalogReference is returned when an offer references an unknown sector or level
	ErrInvalidCatalogReference = errors.New("invalid catalog reference")

	// ErrEmbedding is returned when embedding generation exhausted its attempts
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrDuplicateApplication is returned when an open application already exists
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrDailyApplicationLimit is returned when the daily quota is reached
	ErrDailyApplicationLimit = errors.New("daily application limit reached")

	// ErrInvalidStatusTransition is returned for a disallowed application status change
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// CatalogKind names the catalog a reference belongs to
type CatalogKind string

const (
	CatalogSector CatalogKind = "SECTOR"
	CatalogLevel  CatalogKind = "LEVEL"
)

// OfferNotFoundError represents a missing offer with context
type OfferNotFoundError struct {
	OfferID string
}

func (e *OfferNotFoundError) Error() string {
	return fmt.Sprintf("offer '%s' not found", e.OfferID)
}

func (e *OfferNotFoundError) Is(target error) bool {
	return target == ErrOfferNotFound
}

// NewOfferNotFoundError creates a new OfferNotFoundError
func NewOfferNotFoundError(offerID string) *OfferNotFoundError {
	return &OfferNotFoundError{OfferID: offerID}
}

// CandidateNotFoundError represents a missing candidate with context
type CandidateNotFoundError struct {
	CandidateID string
}

func (e *CandidateNotFoundError) Error() string {
	return fmt.Sprintf("candidate '%s' not found", e.CandidateID)
}

func (e *CandidateNotFoundError) Is(target error) bool {
	return target == ErrCandidateNotFound
}

// NewCandidateNotFoundError creates a new CandidateNotFoundError
func NewCandidateNotFoundError(candidateID string) *CandidateNotFoundError {
	return &CandidateNotFoundError{CandidateID: candidateID}
}

// ApplicationNotFoundError represents a missing application with context
type ApplicationNotFoundError struct {
	ApplicationID string
}

func (e *ApplicationNotFoundError) Error() string {
	return fmt.Sprintf("application '%s' not found", e.ApplicationID)
}

func (e *ApplicationNotFoundError) Is(target error) bool {
	return target == ErrApplicationNotFound
}

// NewApplicationNotFoundError creates a new ApplicationNotFoundError
func NewApplicationNotFoundError(applicationID string) *ApplicationNotFoundError {
	return &ApplicationNotFoundError{ApplicationID: applicationID}
}

// InvalidCatalogReferenceError names the catalog reference that failed to resolve
type InvalidCatalogReferenceError struct {
	Kind CatalogKind
	ID   string
}

func (e *InvalidCatalogReferenceError) Error() string {
	return fmt.Sprintf("invalid %s catalog reference '%s'", e.Kind, e.ID)
}

func (e *InvalidCatalogReferenceError) Is(target error) bool {
	return target == ErrInvalidCatalogReference
}

// NewInvalidCatalogReferenceError creates a new InvalidCatalogReferenceError
func NewInvalidCatalogReferenceError(kind CatalogKind, id string) *InvalidCatalogReferenceError {
	return &InvalidCatalogReferenceError{Kind: kind, ID: id}
}

// EmbeddingError is raised once every embedding attempt has failed. The
// message is the last underlying failure's message.
type EmbeddingError struct {
	Attempts int
	Cause    error
}

func (e *EmbeddingError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("embedding generation failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("embedding generation failed after %d attempts: %s", e.Attempts, e.Cause.Error())
}

func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbedding
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// NewEmbeddingError creates a new EmbeddingError
func NewEmbeddingError(attempts int, cause error) *EmbeddingError {
	return &EmbeddingError{Attempts: attempts, Cause: cause}
}

// DuplicateApplicationError represents an already open application for the pair
type DuplicateApplicationError struct {
	CandidateID string
	OfferID     string
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("candidate '%s' already has an open application for offer '%s'", e.CandidateID, e.OfferID)
}

func (e *DuplicateApplicationError) Is(target error) bool {
	return target == ErrDuplicateApplication
}

// NewDuplicateApplicationError creates a new DuplicateApplicationError
func NewDuplicateApplicationError(candidateID, offerID string) *DuplicateApplicationError {
	return &DuplicateApplicationError{CandidateID: candidateID, OfferID: offerID}
}

// DailyApplicationLimitError represents an exhausted daily quota
type DailyApplicationLimitError struct {
	CandidateID string
	Limit       int
}

func (e *DailyApplicationLimitError) Error() string {
	return fmt.Sprintf("candidate '%s' reached the limit of %d applications per day", e.CandidateID, e.Limit)
}

func (e *DailyApplicationLimitError) Is(target error) bool {
	return target == ErrDailyApplicationLimit
}

// NewDailyApplicationLimitError creates a new DailyApplicationLimitError
func NewDailyApplicationLimitError(candidateID string, limit int) *DailyApplicationLimitError {
	return &DailyApplicationLimitError{CandidateID: candidateID, Limit: limit}
}

// InvalidStatusTransitionError represents a disallowed status change
type InvalidStatusTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

func (e *InvalidStatusTransitionError) Is(target error) bool {
	return target == ErrInvalidStatusTransition
}

// NewInvalidStatusTransitionError creates a new InvalidStatusTransitionError
func NewInvalidStatusTransitionError(from, to ApplicationStatus) *InvalidStatusTransitionError {
	return &InvalidStatusTransitionError{From: from, To: to}
}
