// Package types provides shared type definitions for the matching service.
//
// This package defines the domain types used across the scoring, retrieval,
// matching and admission components: offers, candidates, match results and
// applications, together with the typed errors the core returns to callers.
//
// # Core Types
//
// Offer is a job posting with weighted skill requirements:
//
//	offer := &types.Offer{
//	    ID:       "offer-1",
//	    Title:    "Backend Engineer",
//	    SectorID: "SEC_TECH",
//	    LevelID:  "NIV_SENIOR",
//	    MandatorySkills: []types.Skill{{Name: "Go", Weight: 1}},
//	}
//
// Candidate is a read-only profile with a precomputed embedding:
//
//	candidate := &types.Candidate{
//	    ID:       "cand-1",
//	    Skills:   []string{"golang", "postgresql"},
//	    LevelID:  "NIV_SENIOR",
//	    SectorID: "SEC_TECH",
//	}
//
// MatchResult is the ephemeral output of one ranking run. It is never
// persisted:
//
//	result.MatchScore           // weighted total in [0,1], two decimals
//	result.Breakdown.Similarity // one of the four sub-scores
//
// # Applications
//
// Application tracks a candidate's submission to an offer. Only PENDING and
// UNDER_REVIEW are open states; at most one open application may exist per
// (candidate, offer) pair:
//
//	PENDING ──► UNDER_REVIEW ──► ACCEPTED
//	   │              │
//	   └──────────────┴────────► REJECTED
//
// # Errors
//
// Every expected failure is a typed error that matches its sentinel with
// errors.Is and carries context for errors.As:
//
//	var dup *types.DuplicateApplicationError
//	if errors.As(err, &dup) {
//	    log.Printf("already applied to %s", dup.OfferID)
//	}
//	if errors.Is(err, types.ErrDailyApplicationLimit) { ... }
package types
