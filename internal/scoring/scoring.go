package scoring

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/pkg/types"
)

const (
	// LevelMatchScore is the level sub-score when levels are equal
	LevelMatchScore = 1.0
	// LevelMismatchScore is the level sub-score otherwise
	LevelMismatchScore = 0.5
)

// inferenceMap lists technologies that imply a broader skill
var inferenceMap = map[string][]string{
	"javascript": {"react", "angular", "vue", "node", "typescript", "express", "next"},
	"node.js":    {"express", "nest", "mean", "mern", "javascript", "typescript"},
	"sql":        {"mysql", "postgresql", "postgres", "oracle", "sql server", "database", "bases de datos"},
	"python":     {"django", "flask", "fastapi", "pandas", "numpy", "pytorch", "tensorflow"},
	"java":       {"spring", "hibernate", "jakarta"},
	"c#":         {".net", "dotnet", "entity framework"},
}

// Engine scores candidates against offers. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	weights   config.Weights
	inference bool
	logger    *zap.Logger
}

// NewEngine creates an engine from validated scoring configuration
func NewEngine(cfg config.ScoringConfig, log *zap.Logger) *Engine {
	return &Engine{
		weights:   cfg.Weights,
		inference: cfg.SkillInference,
		logger:    logger.Named(log, "scoring"),
	}
}

// Weights returns the weights the engine applies
func (e *Engine) Weights() config.Weights {
	return e.weights
}

// SkillScore returns the weighted share of required skills covered by the
// candidate's skills.
func (e *Engine) SkillScore(candidateSkills []string, required []types.Skill) float64 {
	if len(required) == 0 {
		return 1.0
	}

	have := normalizeSkills(candidateSkills)

	var total, matched float64
	for _, req := range required {
		total += req.Weight
		name := strings.ToLower(strings.TrimSpace(req.Name))
		if matchesDirect(have, name) || (e.inference && matchesInferred(have, name)) {
			matched += req.Weight
		}
	}

	if total == 0 {
		return 0
	}
	return matched / total
}

// LevelScore compares the candidate's current level with the required one
func LevelScore(candidateLevel, requiredLevel string) float64 {
	if candidateLevel == requiredLevel {
		return LevelMatchScore
	}
	return LevelMismatchScore
}

// Breakdown computes the four sub-scores for one pair
func (e *Engine) Breakdown(skills []string, level string, offer *types.Offer, similarity float64) types.ScoreBreakdown {
	return types.ScoreBreakdown{
		Similarity:      clampUnit(similarity),
		MandatorySkills: e.SkillScore(skills, offer.MandatorySkills),
		DesirableSkills: e.SkillScore(skills, offer.DesirableSkills),
		Level:           LevelScore(level, offer.LevelID),
	}
}

// Combine returns the weighted sum of a breakdown, before rounding
func (e *Engine) Combine(b types.ScoreBreakdown) float64 {
	return e.weights.Similarity*b.Similarity +
		e.weights.Mandatory*b.MandatorySkills +
		e.weights.Desirable*b.DesirableSkills +
		e.weights.Level*b.Level
}

// Score ranks one candidate for an offer
func (e *Engine) Score(candidate *types.Candidate, offer *types.Offer, similarity float64) types.MatchResult {
	b := e.Breakdown(candidate.Skills, candidate.LevelID, offer, similarity)
	score := clampUnit(round2(e.Combine(b)))

	if ce := e.logger.Check(zap.DebugLevel, "candidate scored"); ce != nil {
		ce.Write(
			zap.String(logger.FieldOfferID, offer.ID),
			zap.String(logger.FieldCandidateID, candidate.ID),
			zap.Float64("score", score),
		)
	}

	return types.MatchResult{
		CandidateID: candidate.ID,
		OfferID:     offer.ID,
		MatchScore:  score,
		Breakdown:   b,
		Candidate:   candidate,
	}
}

// ScoreOffer ranks one offer for a candidate, used by reverse matching
func (e *Engine) ScoreOffer(candidate *types.Candidate, offer *types.Offer, similarity float64) types.OfferMatch {
	b := e.Breakdown(candidate.Skills, candidate.LevelID, offer, similarity)
	return types.OfferMatch{
		OfferID:    offer.ID,
		MatchScore: clampUnit(round2(e.Combine(b))),
		Breakdown:  b,
		Offer:      offer,
	}
}

// Rank sorts results by score descending, keeping input order among equal
// scores, then keeps at most max results. max <= 0 keeps everything.
func Rank(results []types.MatchResult, max int) []types.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return truncate(results, max)
}

// RankOffers is Rank for reverse matching results
func RankOffers(results []types.OfferMatch, max int) []types.OfferMatch {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return truncate(results, max)
}

func truncate[T any](s []T, max int) []T {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue // an empty name would be a substring of everything
		}
		out = append(out, s)
	}
	return out
}

func matchesDirect(have []string, required string) bool {
	if required == "" {
		return false
	}
	for _, h := range have {
		if strings.Contains(h, required) || strings.Contains(required, h) {
			return true
		}
	}
	return false
}

func matchesInferred(have []string, required string) bool {
	implied, ok := inferenceMap[required]
	if !ok {
		return false
	}
	for _, h := range have {
		for _, tech := range implied {
			if strings.Contains(h, tech) {
				return true
			}
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
