package types

import "errors"

// Candidate is a job seeker profile. The embedding is produced by an external
// sync process and consumed read-only.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Skills    []string  `json:"skills"`
	LevelID   string    `json:"level_id"`
	SectorID  string    `json:"sector_id"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate checks the candidate identity
func (c *Candidate) Validate() error {
	if c.ID == "" {
		return errors.New("candidate id cannot be empty")
	}
	return nil
}

// ScoredCandidate pairs a retrieved candidate with the similarity the vector
// store assigned to it for one query, normalized to [0,1].
type ScoredCandidate struct {
	Candidate  *Candidate
	Similarity float64
}

// ScoredOffer pairs a retrieved offer with its similarity, normalized to [0,1].
type ScoredOffer struct {
	Offer      *Offer
	Similarity float64
}
