package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/juan975/cail-matching/pkg/types"
)

// Similarities are reported in [0,1]: cosine similarity s maps to (s+1)/2,
// and sqlite-vec cosine distance d = 1-s maps to 1-d/2.

// searchCandidates returns up to limit candidates of the sector closest to
// queryVector, best first. Candidates without an embedding are skipped.
func searchCandidates(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error) {
	if limit <= 0 || len(queryVector) == 0 {
		return []types.ScoredCandidate{}, nil
	}
	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchCandidatesOptimized(ctx, q, queryVector, sectorID, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchCandidatesFallback(ctx, q, queryVector, sectorID, limit)
}

// searchOffers returns up to limit ACTIVE offers of the sector closest to
// queryVector, best first
func searchOffers(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredOffer, error) {
	if limit <= 0 || len(queryVector) == 0 {
		return []types.ScoredOffer{}, nil
	}
	if VectorExtensionAvailable {
		return searchOffersOptimized(ctx, q, queryVector, sectorID, limit)
	}
	return searchOffersFallback(ctx, q, queryVector, sectorID, limit)
}

func searchCandidatesOptimized(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error) {
	blob := serializeVector(queryVector)
	query := `
		SELECT ` + candidateColumns + `,
			1.0 - vec_distance_cosine(embedding, ?) / 2.0 AS similarity
		FROM candidates
		WHERE embedding IS NOT NULL AND length(embedding) = ?
	`
	args := []interface{}{blob, len(blob)}
	if sectorID != "" {
		query += " AND sector_id = ?"
		args = append(args, sectorID)
	}
	query += " ORDER BY similarity DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute candidate search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.ScoredCandidate, 0, limit)
	for rows.Next() {
		var c types.Candidate
		var skills string
		var embedding []byte
		var similarity float64
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &skills, &c.LevelID, &c.SectorID, &embedding, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		cand, err := decodeCandidate(&c, skills, embedding)
		if err != nil {
			return nil, err
		}
		results = append(results, types.ScoredCandidate{Candidate: cand, Similarity: clampUnit(similarity)})
	}
	return results, rows.Err()
}

func searchCandidatesFallback(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE embedding IS NOT NULL`
	args := []interface{}{}
	if sectorID != "" {
		query += " AND sector_id = ?"
		args = append(args, sectorID)
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.ScoredCandidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		if len(c.Embedding) != len(queryVector) {
			continue // Dimension mismatch, skip
		}
		results = append(results, types.ScoredCandidate{
			Candidate:  c,
			Similarity: normalizeCosine(cosineSimilarity(queryVector, c.Embedding)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func searchOffersOptimized(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredOffer, error) {
	blob := serializeVector(queryVector)
	query := `
		SELECT ` + offerColumns + `,
			1.0 - vec_distance_cosine(embedding, ?) / 2.0 AS similarity
		FROM offers
		WHERE status = 'ACTIVE' AND embedding IS NOT NULL AND length(embedding) = ?
	`
	args := []interface{}{blob, len(blob)}
	if sectorID != "" {
		query += " AND sector_id = ?"
		args = append(args, sectorID)
	}
	query += " ORDER BY similarity DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute offer search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.ScoredOffer, 0, limit)
	for rows.Next() {
		var o types.Offer
		var mandatory, desirable, status string
		var embedding []byte
		var similarity float64
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.SectorID, &o.LevelID,
			&mandatory, &desirable, &status, &embedding, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		offer, err := decodeOffer(&o, mandatory, desirable, status, embedding)
		if err != nil {
			return nil, err
		}
		results = append(results, types.ScoredOffer{Offer: offer, Similarity: clampUnit(similarity)})
	}
	return results, rows.Err()
}

func searchOffersFallback(ctx context.Context, q querier, queryVector []float32, sectorID string, limit int) ([]types.ScoredOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE status = 'ACTIVE' AND embedding IS NOT NULL`
	args := []interface{}{}
	if sectorID != "" {
		query += " AND sector_id = ?"
		args = append(args, sectorID)
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.ScoredOffer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		if len(o.Embedding) != len(queryVector) {
			continue
		}
		results = append(results, types.ScoredOffer{
			Offer:      o,
			Similarity: normalizeCosine(cosineSimilarity(queryVector, o.Embedding)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// normalizeCosine maps a cosine similarity in [-1,1] to [0,1]
func normalizeCosine(s float64) float64 {
	return clampUnit((s + 1) / 2)
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

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
