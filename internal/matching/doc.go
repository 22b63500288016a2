// Package matching drives a ranking run from an offer ID to a ranked list
// of candidates.
//
// A run moves through these states in order, stopping at the first failure:
//
//	VALIDATING_OFFER → VALIDATING_CATALOGS → EMBEDDING → RETRIEVING → SCORING → DONE
//
// The sector and level checks run concurrently. Scoring fans out over the
// retrieved candidates and writes into a preallocated slice, so the ranked
// order only depends on retrieval order and scores.
//
// OffersForCandidate runs the same scoring in the other direction: it ranks
// active offers of the candidate's sector for one candidate.
package matching
