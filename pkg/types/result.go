package types

import "errors"

var (
	ErrInvalidMatchScore = errors.New("match score must be between 0 and 1")
	ErrMissingReference  = errors.New("candidate and offer references are required")
)

// ScoreBreakdown holds the four sub-scores combined into a match score
type ScoreBreakdown struct {
	Similarity      float64 `json:"similarity"`
	MandatorySkills float64 `json:"mandatory_skills"`
	DesirableSkills float64 `json:"desirable_skills"`
	Level           float64 `json:"level"`
}

// MatchResult is one ranked (candidate, offer) pair
type MatchResult struct {
	// Identification
	CandidateID string `json:"candidate_id"`
	OfferID     string `json:"offer_id"`

	// Scoring
	MatchScore float64        `json:"match_score"` // Weighted total, rounded to 2 decimals
	Breakdown  ScoreBreakdown `json:"breakdown"`

	Candidate *Candidate `json:"candidate,omitempty"`
}

// OfferMatch is one ranked offer for a candidate (reverse matching)
type OfferMatch struct {
	OfferID    string         `json:"offer_id"`
	MatchScore float64        `json:"match_score"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	Offer      *Offer         `json:"offer,omitempty"`
}

// Validate checks if the match result is valid
func (r *MatchResult) Validate() error {
	if r.CandidateID == "" || r.OfferID == "" {
		return ErrMissingReference
	}
	if r.MatchScore < 0 || r.MatchScore > 1 {
		return ErrInvalidMatchScore
	}
	return nil
}
