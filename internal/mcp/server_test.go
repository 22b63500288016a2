package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juan975/cail-matching/internal/admission"
	"github.com/juan975/cail-matching/internal/catalog"
	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/embedder"
	"github.com/juan975/cail-matching/internal/matching"
	"github.com/juan975/cail-matching/internal/retriever"
	"github.com/juan975/cail-matching/internal/scoring"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

type testServer struct {
	*Server
	db  *storage.SQLiteStorage
	emb *embedder.Resilient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Default()
	cfg.Embedding.RetryDelay = 0
	local, err := embedder.NewLocalProvider(embedder.NewCache(100))
	require.NoError(t, err)
	emb := embedder.NewResilient(local, cfg.Embedding.ResilienceConfig, nil)

	orch := matching.NewOrchestrator(cfg.Matching, matching.Deps{
		Offers:     db,
		Candidates: db,
		Catalog:    catalog.NewStore(db),
		Embedder:   emb,
		Retriever:  retriever.New(db, nil),
		Scorer:     scoring.NewEngine(cfg.Scoring, nil),
	}, nil)

	srv := NewServer(Deps{
		Matcher:   orch,
		Admission: admission.NewWorkflow(db, cfg.Admission, nil),
		Status:    db,
	}, nil)

	offer := &types.Offer{
		ID:              "offer-1",
		Title:           "Backend Developer",
		Description:     "Build APIs in Go",
		SectorID:        "SEC_TECH",
		LevelID:         "NIV_SENIOR",
		MandatorySkills: []types.Skill{{Name: "Go"}},
		DesirableSkills: []types.Skill{{Name: "Docker"}},
	}
	offer.Embedding, err = emb.Embed(ctx, matching.OfferText(offer))
	require.NoError(t, err)
	require.NoError(t, db.UpsertOffer(ctx, offer))
	for i, skills := range [][]string{{"go", "docker"}, {"go"}, {"java"}} {
		c := &types.Candidate{
			ID:       fmt.Sprintf("cand-%d", i+1),
			Name:     fmt.Sprintf("Candidate %d", i+1),
			Skills:   skills,
			LevelID:  "NIV_SENIOR",
			SectorID: "SEC_TECH",
		}
		c.Embedding, err = emb.Embed(ctx, matching.CandidateText(c))
		require.NoError(t, err)
		require.NoError(t, db.UpsertCandidate(ctx, c))
	}

	return &testServer{Server: srv, db: db, emb: emb}
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPCode(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %v", err)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcp, "MCP server should be initialized")
	assert.NotNil(t, s.matcher)
	assert.NotNil(t, s.admission)
	assert.NotNil(t, s.status)
}

func TestHandleExecuteMatching(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleExecuteMatching(ctx, callRequest("execute_matching", map[string]interface{}{
		"offer_id": "offer-1",
	}))
	require.NoError(t, err)

	out := decodeResult(t, result)
	assert.Equal(t, "offer-1", out["offer_id"])
	assert.EqualValues(t, 3, out["count"])

	results := out["results"].([]interface{})
	require.Len(t, results, 3)
	first := results[0].(map[string]interface{})
	assert.NotEqual(t, "cand-3", first["candidate_id"], "candidate without Go should not rank first")

	candidate := first["candidate"].(map[string]interface{})
	assert.NotContains(t, candidate, "embedding")
}

func TestHandleExecuteMatching_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing offer_id", map[string]interface{}{}, ErrorCodeInvalidParams},
		{"blank offer_id", map[string]interface{}{"offer_id": "  "}, ErrorCodeInvalidParams},
		{"unknown offer", map[string]interface{}{"offer_id": "nope"}, ErrorCodeOfferNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleExecuteMatching(ctx, callRequest("execute_matching", tt.args))
			requireMCPCode(t, err, tt.code)
		})
	}
}

func TestHandleExecuteMatching_InvalidCatalog(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.db.UpsertOffer(ctx, &types.Offer{
		ID: "offer-bad", Title: "Nurse", SectorID: "SEC_UNKNOWN", LevelID: "NIV_SENIOR",
	}))

	_, err := s.handleExecuteMatching(ctx, callRequest("execute_matching", map[string]interface{}{
		"offer_id": "offer-bad",
	}))
	mcpErr := requireMCPCode(t, err, ErrorCodeInvalidCatalogReference)
	data := mcpErr.Data.(map[string]interface{})
	assert.Equal(t, types.CatalogSector, data["kind"])
	assert.Equal(t, "SEC_UNKNOWN", data["id"])
}

func TestHandleOffersForCandidate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("ranks offers", func(t *testing.T) {
		result, err := s.handleOffersForCandidate(ctx, callRequest("offers_for_candidate", map[string]interface{}{
			"candidate_id": "cand-1",
			"limit":        float64(5),
		}))
		require.NoError(t, err)

		out := decodeResult(t, result)
		assert.EqualValues(t, 1, out["count"])
		first := out["results"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "offer-1", first["offer_id"])
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := s.handleOffersForCandidate(ctx, callRequest("offers_for_candidate", map[string]interface{}{
			"candidate_id": "cand-1",
			"limit":        float64(1000),
		}))
		requireMCPCode(t, err, ErrorCodeInvalidParams)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		_, err := s.handleOffersForCandidate(ctx, callRequest("offers_for_candidate", map[string]interface{}{
			"candidate_id": "ghost",
		}))
		requireMCPCode(t, err, ErrorCodeCandidateNotFound)
	})
}

func TestApplicationLifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleApplyToOffer(ctx, callRequest("apply_to_offer", map[string]interface{}{
		"candidate_id": "cand-1",
		"offer_id":     "offer-1",
		"match_score":  0.92,
	}))
	require.NoError(t, err)
	out := decodeResult(t, result)
	appID, _ := out["application_id"].(string)
	require.NotEmpty(t, appID)
	assert.Equal(t, string(types.StatusPending), out["status"])

	_, err = s.handleApplyToOffer(ctx, callRequest("apply_to_offer", map[string]interface{}{
		"candidate_id": "cand-1",
		"offer_id":     "offer-1",
	}))
	requireMCPCode(t, err, ErrorCodeDuplicateApplication)

	result, err = s.handleListMyApplications(ctx, callRequest("list_my_applications", map[string]interface{}{
		"candidate_id": "cand-1",
	}))
	require.NoError(t, err)
	out = decodeResult(t, result)
	assert.EqualValues(t, 1, out["count"])
	app := out["applications"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, appID, app["id"])
	assert.InDelta(t, 0.92, app["match_score"], 1e-9)

	result, err = s.handleListOfferApplications(ctx, callRequest("list_offer_applications", map[string]interface{}{
		"offer_id":           "offer-1",
		"include_candidates": true,
	}))
	require.NoError(t, err)
	out = decodeResult(t, result)
	app = out["applications"].([]interface{})[0].(map[string]interface{})
	candidate := app["candidate"].(map[string]interface{})
	assert.Equal(t, "Candidate 1", candidate["name"])
	assert.NotContains(t, candidate, "embedding")

	result, err = s.handleUpdateApplicationStatus(ctx, callRequest("update_application_status", map[string]interface{}{
		"application_id": appID,
		"status":         "UNDER_REVIEW",
	}))
	require.NoError(t, err)
	out = decodeResult(t, result)
	assert.Equal(t, "UNDER_REVIEW", out["application"].(map[string]interface{})["status"])

	_, err = s.handleUpdateApplicationStatus(ctx, callRequest("update_application_status", map[string]interface{}{
		"application_id": appID,
		"status":         "PENDING",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidTransition)
}

func TestHandleApplyToOffer_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing candidate", map[string]interface{}{"offer_id": "offer-1"}, ErrorCodeInvalidParams},
		{"missing offer", map[string]interface{}{"candidate_id": "cand-1"}, ErrorCodeInvalidParams},
		{"score above one", map[string]interface{}{"candidate_id": "cand-1", "offer_id": "offer-1", "match_score": 1.5}, ErrorCodeInvalidParams},
		{"unknown offer", map[string]interface{}{"candidate_id": "cand-1", "offer_id": "ghost"}, ErrorCodeOfferNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleApplyToOffer(ctx, callRequest("apply_to_offer", tt.args))
			requireMCPCode(t, err, tt.code)
		})
	}
}

func TestHandleListOfferApplications_UnknownOffer(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleListOfferApplications(context.Background(), callRequest("list_offer_applications", map[string]interface{}{
		"offer_id": "ghost",
	}))
	requireMCPCode(t, err, ErrorCodeOfferNotFound)
}

func TestHandleUpdateApplicationStatus_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleUpdateApplicationStatus(ctx, callRequest("update_application_status", map[string]interface{}{
		"application_id": "app-1",
		"status":         "ARCHIVED",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleUpdateApplicationStatus(ctx, callRequest("update_application_status", map[string]interface{}{
		"application_id": "ghost",
		"status":         "ACCEPTED",
	}))
	requireMCPCode(t, err, ErrorCodeApplicationNotFound)
}

func TestHandleGetStatus(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	out := decodeResult(t, result)
	assert.Equal(t, storage.CurrentSchemaVersion, out["schema_version"])
	assert.Equal(t, storage.BuildMode, out["build_mode"])
	stats := out["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["offers"])
	assert.EqualValues(t, 3, stats["candidates"])
	health := out["health"].(map[string]interface{})
	assert.Equal(t, true, health["database_accessible"])
}

func TestDecodeArgs_InvalidShape(t *testing.T) {
	var req mcp.CallToolRequest
	req.Params.Arguments = []string{"not", "a", "map"}

	var args executeMatchingArgs
	err := decodeArgs(req, &args)
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	err = decodeArgs(callRequest("offers_for_candidate", map[string]interface{}{"limit": "many"}), &offersForCandidateArgs{})
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestDecodeArgs_Limit(t *testing.T) {
	tests := []struct {
		name    string
		limit   interface{}
		want    int
		wantErr bool
	}{
		{"integral json number", float64(5), 5, false},
		{"go int", 7, 7, false},
		{"fractional number", 2.7, 0, true},
		{"numeric string", "5", 0, true},
		{"boolean", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args offersForCandidateArgs
			err := decodeArgs(callRequest("offers_for_candidate", map[string]interface{}{
				"candidate_id": "cand-1",
				"limit":        tt.limit,
			}), &args)
			if tt.wantErr {
				requireMCPCode(t, err, ErrorCodeInvalidParams)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, args.Limit)
			assert.Equal(t, tt.want, *args.Limit)
		})
	}
}

func TestHandleOffersForCandidate_FractionalLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleOffersForCandidate(context.Background(), callRequest("offers_for_candidate", map[string]interface{}{
		"candidate_id": "cand-1",
		"limit":        2.7,
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestToMCPError(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"offer not found", types.NewOfferNotFoundError("o"), ErrorCodeOfferNotFound},
		{"candidate not found", fmt.Errorf("wrap: %w", types.NewCandidateNotFoundError("c")), ErrorCodeCandidateNotFound},
		{"application not found", types.NewApplicationNotFoundError("a"), ErrorCodeApplicationNotFound},
		{"catalog", types.NewInvalidCatalogReferenceError(types.CatalogLevel, "X"), ErrorCodeInvalidCatalogReference},
		{"embedding", types.NewEmbeddingError(3, errors.New("timeout")), ErrorCodeEmbeddingFailed},
		{"duplicate", types.NewDuplicateApplicationError("c", "o"), ErrorCodeDuplicateApplication},
		{"daily limit", types.NewDailyApplicationLimitError("c", 10), ErrorCodeDailyLimit},
		{"transition", types.NewInvalidStatusTransitionError(types.StatusAccepted, types.StatusPending), ErrorCodeInvalidTransition},
		{"invalid argument", fmt.Errorf("%w: candidate id is required", admission.ErrInvalidArgument), ErrorCodeInvalidParams},
		{"missing sector", retriever.ErrMissingSector, ErrorCodeInvalidParams},
		{"unexpected", errors.New("disk I/O error"), ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireMCPCode(t, s.toMCPError("test", tt.err), tt.code)
		})
	}
}

func TestMCPError_Error(t *testing.T) {
	err := newMCPError(ErrorCodeDailyLimit, "daily application limit reached", nil)
	assert.Equal(t, "MCP error -32005: daily application limit reached", err.Error())
}
