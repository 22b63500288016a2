package types

import (
	"fmt"
	"time"
)

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "PENDING"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusAccepted    ApplicationStatus = "ACCEPTED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// OpenStatuses are the states in which an application blocks a new one for
// the same (candidate, offer) pair.
var OpenStatuses = []ApplicationStatus{StatusPending, StatusUnderReview}

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusAccepted, StatusRejected},
	// ACCEPTED and REJECTED are terminal
}

// ParseApplicationStatus converts a raw string to an ApplicationStatus
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusPending, StatusUnderReview, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsOpen reports whether the status blocks a duplicate application
func (s ApplicationStatus) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

// IsTransitionAllowed returns true when moving from → to is permitted
func IsTransitionAllowed(from, to ApplicationStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Application is a candidate's submission to an offer
type Application struct {
	ID          string            `json:"id"`
	CandidateID string            `json:"candidate_id"`
	OfferID     string            `json:"offer_id"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Status      ApplicationStatus `json:"status"`
	MatchScore  *float64          `json:"match_score,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ApplicationWithCandidate is an application enriched with the applicant's
// profile. Candidate is nil when the profile could not be found.
type ApplicationWithCandidate struct {
	Application
	Candidate *Candidate `json:"candidate,omitempty"`
}
