package types

import (
	"errors"
	"strings"
)

// OfferStatus is the lifecycle state of an offer
type OfferStatus string

const (
	OfferActive OfferStatus = "ACTIVE"
	OfferClosed OfferStatus = "CLOSED"
	OfferPaused OfferStatus = "PAUSED"
)

// Default weights applied to skills stored without a positive weight
const (
	DefaultMandatoryWeight = 0.8
	DefaultDesirableWeight = 0.4
)

// Skill is a named requirement with a relative weight
type Skill struct {
	Name   string  `json:"name" mapstructure:"name"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

// Offer represents a job posting
type Offer struct {
	// Identification
	ID    string `json:"id"`
	Title string `json:"title"`

	Description string `json:"description"`

	// Catalog references
	SectorID string `json:"sector_id"`
	LevelID  string `json:"level_id"`

	// Requirements, in posting order
	MandatorySkills []Skill `json:"mandatory_skills"`
	DesirableSkills []Skill `json:"desirable_skills"`

	Status OfferStatus `json:"status"`

	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate checks that the offer carries the fields every component relies on
func (o *Offer) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("offer id cannot be empty")
	}
	if strings.TrimSpace(o.Title) == "" {
		return errors.New("offer title cannot be empty")
	}
	switch o.Status {
	case OfferActive, OfferClosed, OfferPaused:
	default:
		return errors.New("offer status must be ACTIVE, CLOSED or PAUSED")
	}
	return nil
}

// NormalizeSkills replaces non-positive skill weights with the defaults for
// mandatory and desirable requirements.
func (o *Offer) NormalizeSkills() {
	o.MandatorySkills = withDefaultWeight(o.MandatorySkills, DefaultMandatoryWeight)
	o.DesirableSkills = withDefaultWeight(o.DesirableSkills, DefaultDesirableWeight)
}

func withDefaultWeight(skills []Skill, weight float64) []Skill {
	out := make([]Skill, len(skills))
	for i, s := range skills {
		out[i] = s
		if s.Weight <= 0 {
			out[i].Weight = weight
		}
	}
	return out
}

// SkillNames returns the names of the given skills, preserving order
func SkillNames(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}
