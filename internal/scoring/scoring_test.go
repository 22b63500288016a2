package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/pkg/types"
)

func newTestEngine(inference bool) *Engine {
	cfg := config.Default().Scoring
	cfg.SkillInference = inference
	return NewEngine(cfg, nil)
}

func pythonOffer() *types.Offer {
	return &types.Offer{
		ID:              "offer-1",
		Title:           "Data Engineer",
		SectorID:        "tech",
		LevelID:         "senior",
		MandatorySkills: []types.Skill{{Name: "Python", Weight: 1}},
		DesirableSkills: []types.Skill{},
		Status:          types.OfferActive,
	}
}

func TestSkillScore(t *testing.T) {
	e := newTestEngine(false)

	tests := []struct {
		name     string
		have     []string
		required []types.Skill
		want     float64
	}{
		{"no requirements", []string{"go"}, nil, 1.0},
		{"empty requirements", nil, []types.Skill{}, 1.0},
		{"exact match", []string{"Go"}, []types.Skill{{Name: "Go", Weight: 1}}, 1.0},
		{"candidate contains required", []string{"React.js"}, []types.Skill{{Name: "React", Weight: 1}}, 1.0},
		{"required contains candidate", []string{"React"}, []types.Skill{{Name: "React.js", Weight: 1}}, 1.0},
		{"no candidate skills", nil, []types.Skill{{Name: "Go", Weight: 1}}, 0},
		{"weighted partial", []string{"go"}, []types.Skill{{Name: "Go", Weight: 3}, {Name: "Rust", Weight: 1}}, 0.75},
		{"zero total weight", []string{"go"}, []types.Skill{{Name: "Go", Weight: 0}}, 0},
		{"blank candidate skill ignored", []string{"  "}, []types.Skill{{Name: "Go", Weight: 1}}, 0},
		{"inference disabled", []string{"django"}, []types.Skill{{Name: "Python", Weight: 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.SkillScore(tt.have, tt.required), 1e-9)
		})
	}
}

func TestSkillScore_CaseSymmetry(t *testing.T) {
	e := newTestEngine(false)

	upper := e.SkillScore([]string{"REACT"}, []types.Skill{{Name: "react", Weight: 1}})
	lower := e.SkillScore([]string{"react"}, []types.Skill{{Name: "REACT", Weight: 1}})
	assert.Equal(t, upper, lower)
	assert.Equal(t, 1.0, upper)
}

func TestSkillScore_Inference(t *testing.T) {
	e := newTestEngine(true)

	tests := []struct {
		name     string
		have     []string
		required string
		want     float64
	}{
		{"framework implies language", []string{"Django"}, "Python", 1},
		{"engine implies sql", []string{"PostgreSQL 15"}, "SQL", 1},
		{"dotnet implies csharp", []string{"ASP.NET Core"}, "C#", 1},
		{"no implication", []string{"Excel"}, "Java", 0},
		{"unknown required skill", []string{"react"}, "Kotlin", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.SkillScore(tt.have, []types.Skill{{Name: tt.required, Weight: 1}})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLevelScore(t *testing.T) {
	assert.Equal(t, 1.0, LevelScore("senior", "senior"))
	assert.Equal(t, 0.5, LevelScore("junior", "senior"))
	assert.Equal(t, 0.5, LevelScore("", "senior"))
}

func TestScore_Scenarios(t *testing.T) {
	e := newTestEngine(false)
	offer := pythonOffer()

	tests := []struct {
		name       string
		candidate  *types.Candidate
		similarity float64
		raw        float64
		want       float64
	}{
		{
			name:       "full match",
			candidate:  &types.Candidate{ID: "c1", Skills: []string{"python", "sql"}, LevelID: "senior"},
			similarity: 0.8,
			raw:        0.92,
			want:       0.92,
		},
		{
			name:       "level mismatch",
			candidate:  &types.Candidate{ID: "c2", Skills: []string{"python", "sql"}, LevelID: "junior"},
			similarity: 0.8,
			raw:        0.845,
			want:       0.85,
		},
		{
			name:       "no skills and level mismatch",
			candidate:  &types.Candidate{ID: "c3", Skills: []string{"excel"}, LevelID: "junior"},
			similarity: 0.5,
			raw:        0.425,
			want:       0.43,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Score(tt.candidate, offer, tt.similarity)
			assert.InDelta(t, tt.raw, e.Combine(res.Breakdown), 1e-9)
			assert.InDelta(t, tt.want, res.MatchScore, 1e-9)
			assert.Equal(t, tt.candidate.ID, res.CandidateID)
			assert.Equal(t, offer.ID, res.OfferID)
			assert.Same(t, tt.candidate, res.Candidate)
			require.NoError(t, res.Validate())
		})
	}
}

func TestScore_RealSimilarity(t *testing.T) {
	e := newTestEngine(false)
	offer := pythonOffer()
	c := &types.Candidate{ID: "c", Skills: []string{"python"}, LevelID: "senior"}

	low := e.Score(c, offer, 0.1)
	high := e.Score(c, offer, 0.9)
	assert.Less(t, low.MatchScore, high.MatchScore)
	assert.Equal(t, 0.1, low.Breakdown.Similarity)
}

func TestScore_Bounds(t *testing.T) {
	e := newTestEngine(true)
	offer := pythonOffer()
	offer.DesirableSkills = []types.Skill{{Name: "Docker", Weight: 0.4}}

	for _, sim := range []float64{-0.5, 0, 0.33, 1, 1.7} {
		for _, skills := range [][]string{nil, {"python"}, {"docker", "python"}} {
			res := e.Score(&types.Candidate{ID: "c", Skills: skills}, offer, sim)
			assert.GreaterOrEqual(t, res.MatchScore, 0.0)
			assert.LessOrEqual(t, res.MatchScore, 1.0)
		}
	}
}

func TestScoreOffer(t *testing.T) {
	e := newTestEngine(false)
	c := &types.Candidate{ID: "c1", Skills: []string{"python"}, LevelID: "senior"}

	res := e.ScoreOffer(c, pythonOffer(), 0.8)
	assert.Equal(t, "offer-1", res.OfferID)
	assert.InDelta(t, 0.92, res.MatchScore, 1e-9)
	require.NotNil(t, res.Offer)
}

func TestRank_StableAndTruncated(t *testing.T) {
	scores := []float64{0.5, 0.9, 0.5, 0.7, 0.9, 0.5, 0.1, 0.5, 0.3, 0.5, 0.2, 0.5}
	results := make([]types.MatchResult, len(scores))
	for i, s := range scores {
		results[i] = types.MatchResult{CandidateID: fmt.Sprintf("c%02d", i), MatchScore: s}
	}

	ranked := Rank(results, 10)
	require.Len(t, ranked, 10)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.CandidateID
	}
	assert.Equal(t, []string{"c01", "c04", "c03", "c00", "c02", "c05", "c07", "c09", "c11", "c08"}, ids)
}

func TestRank_Short(t *testing.T) {
	results := []types.MatchResult{{CandidateID: "a", MatchScore: 0.2}, {CandidateID: "b", MatchScore: 0.4}}

	ranked := Rank(results, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].CandidateID)

	assert.Empty(t, Rank(nil, 10))
	assert.Len(t, Rank([]types.MatchResult{{}, {}, {}}, 0), 3)
}

func TestRankOffers(t *testing.T) {
	results := []types.OfferMatch{
		{OfferID: "a", MatchScore: 0.3},
		{OfferID: "b", MatchScore: 0.6},
		{OfferID: "c", MatchScore: 0.6},
	}

	ranked := RankOffers(results, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].OfferID)
	assert.Equal(t, "c", ranked[1].OfferID)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.85, round2(0.8450000000000001))
	assert.Equal(t, 0.12, round2(0.1234))
	assert.Equal(t, 1.0, round2(0.999))
}
