package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juan975/cail-matching/pkg/types"
)

func TestVectorSerialization(t *testing.T) {
	vectors := [][]float32{
		{},
		{1.0},
		{0.1, -0.2, 0.3, 3.4028235e38},
	}
	for _, v := range vectors {
		blob := SerializeVector(v)
		assert.Len(t, blob, len(v)*4)
		assert.Equal(t, v, DeserializeVector(blob))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalizeCosine(t *testing.T) {
	assert.InDelta(t, 1.0, normalizeCosine(1), 1e-9)
	assert.InDelta(t, 0.5, normalizeCosine(0), 1e-9)
	assert.InDelta(t, 0.0, normalizeCosine(-1), 1e-9)
	assert.InDelta(t, 1.0, normalizeCosine(1.0000001), 1e-9)
}

func seedCandidates(t *testing.T, s *SQLiteStorage) {
	ctx := context.Background()
	candidates := []*types.Candidate{
		{ID: "c-same", SectorID: "SEC_TECH", Embedding: []float32{1, 0}},
		{ID: "c-ortho", SectorID: "SEC_TECH", Embedding: []float32{0, 1}},
		{ID: "c-opposite", SectorID: "SEC_TECH", Embedding: []float32{-1, 0}},
		{ID: "c-other-sector", SectorID: "SEC_SALUD", Embedding: []float32{1, 0}},
		{ID: "c-wrong-dim", SectorID: "SEC_TECH", Embedding: []float32{1, 0, 0}},
		{ID: "c-no-embedding", SectorID: "SEC_TECH"},
	}
	for _, c := range candidates {
		require.NoError(t, s.UpsertCandidate(ctx, c))
	}
}

func candidateIDs(results []types.ScoredCandidate) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Candidate.ID
	}
	return ids
}

func TestSearchCandidates(t *testing.T) {
	s := setupTestDB(t)
	seedCandidates(t, s)
	ctx := context.Background()

	results, err := s.SearchCandidates(ctx, []float32{1, 0}, "SEC_TECH", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-same", "c-ortho", "c-opposite"}, candidateIDs(results))
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.InDelta(t, 0.5, results[1].Similarity, 1e-6)
	assert.InDelta(t, 0.0, results[2].Similarity, 1e-6)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, 0.0)
		assert.LessOrEqual(t, r.Similarity, 1.0)
	}
}

func TestSearchCandidates_Limit(t *testing.T) {
	s := setupTestDB(t)
	seedCandidates(t, s)
	ctx := context.Background()

	results, err := s.SearchCandidates(ctx, []float32{1, 0}, "SEC_TECH", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-same", "c-ortho"}, candidateIDs(results))

	results, err = s.SearchCandidates(ctx, []float32{1, 0}, "SEC_TECH", 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.SearchCandidates(ctx, nil, "SEC_TECH", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchCandidates_EmptySector(t *testing.T) {
	s := setupTestDB(t)
	seedCandidates(t, s)

	results, err := s.SearchCandidates(context.Background(), []float32{1, 0}, "SEC_AGRO", 20)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchOffers(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	active := testOffer("o-active")
	active.Embedding = []float32{1, 0}
	near := testOffer("o-near")
	near.Embedding = []float32{0.8, 0.6}
	closed := testOffer("o-closed")
	closed.Status = types.OfferClosed
	closed.Embedding = []float32{1, 0}
	bare := testOffer("o-bare")
	elsewhere := testOffer("o-elsewhere")
	elsewhere.SectorID = "SEC_AGRO"
	elsewhere.Embedding = []float32{1, 0}

	for _, o := range []*types.Offer{active, near, closed, bare, elsewhere} {
		require.NoError(t, s.UpsertOffer(ctx, o))
	}

	results, err := s.SearchOffers(ctx, []float32{1, 0}, "SEC_TECH", 50)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "o-active", results[0].Offer.ID)
	assert.Equal(t, "o-near", results[1].Offer.ID)
	assert.InDelta(t, 0.9, results[1].Similarity, 1e-6)
	assert.Equal(t, []types.Skill{{Name: "Docker", Weight: types.DefaultDesirableWeight}}, results[0].Offer.DesirableSkills)
}
