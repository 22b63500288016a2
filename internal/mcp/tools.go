package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/admission"
	"github.com/juan975/cail-matching/internal/retriever"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams           = -32602 // Invalid method parameters
	ErrorCodeInternalError           = -32603 // Internal JSON-RPC error
	ErrorCodeOfferNotFound           = -32001 // Offer does not exist
	ErrorCodeInvalidCatalogReference = -32002 // Offer references an unknown sector or level
	ErrorCodeEmbeddingFailed         = -32003 // Embedding provider exhausted its retries
	ErrorCodeDuplicateApplication    = -32004 // An open application already exists
	ErrorCodeDailyLimit              = -32005 // Candidate reached the daily quota
	ErrorCodeCandidateNotFound       = -32006 // Candidate does not exist
	ErrorCodeApplicationNotFound     = -32007 // Application does not exist
	ErrorCodeInvalidTransition       = -32008 // Status change not allowed
)

const maxLimit = 100

type executeMatchingArgs struct {
	OfferID string `mapstructure:"offer_id"`
}

type offersForCandidateArgs struct {
	CandidateID string `mapstructure:"candidate_id"`
	Limit       *int   `mapstructure:"limit"`
}

type applyToOfferArgs struct {
	CandidateID string   `mapstructure:"candidate_id"`
	OfferID     string   `mapstructure:"offer_id"`
	MatchScore  *float64 `mapstructure:"match_score"`
}

type listMyApplicationsArgs struct {
	CandidateID string `mapstructure:"candidate_id"`
}

type listOfferApplicationsArgs struct {
	OfferID           string `mapstructure:"offer_id"`
	IncludeCandidates bool   `mapstructure:"include_candidates"`
}

type updateApplicationStatusArgs struct {
	ApplicationID string `mapstructure:"application_id"`
	Status        string `mapstructure:"status"`
}

// handleExecuteMatching handles the execute_matching tool invocation
func (s *Server) handleExecuteMatching(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args executeMatchingArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("offer_id", args.OfferID); err != nil {
		return nil, err
	}

	results, err := s.matcher.ExecuteMatching(ctx, args.OfferID)
	if err != nil {
		return nil, s.toMCPError("execute_matching", err)
	}

	for i := range results {
		results[i].Candidate = withoutCandidateEmbedding(results[i].Candidate)
	}

	response := map[string]interface{}{
		"offer_id": args.OfferID,
		"count":    len(results),
		"results":  results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleOffersForCandidate handles the offers_for_candidate tool invocation
func (s *Server) handleOffersForCandidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args offersForCandidateArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("candidate_id", args.CandidateID); err != nil {
		return nil, err
	}

	limit := 0
	if args.Limit != nil {
		limit = *args.Limit
		if limit < 1 || limit > maxLimit {
			return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
		}
	}

	results, err := s.matcher.OffersForCandidate(ctx, args.CandidateID, limit)
	if err != nil {
		return nil, s.toMCPError("offers_for_candidate", err)
	}

	for i := range results {
		results[i].Offer = withoutOfferEmbedding(results[i].Offer)
	}

	response := map[string]interface{}{
		"candidate_id": args.CandidateID,
		"count":        len(results),
		"results":      results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleApplyToOffer handles the apply_to_offer tool invocation
func (s *Server) handleApplyToOffer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args applyToOfferArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("candidate_id", args.CandidateID); err != nil {
		return nil, err
	}
	if err := requireParam("offer_id", args.OfferID); err != nil {
		return nil, err
	}
	if args.MatchScore != nil && (*args.MatchScore < 0 || *args.MatchScore > 1) {
		return nil, newMCPError(ErrorCodeInvalidParams, "match_score must be between 0 and 1", map[string]interface{}{
			"param": "match_score",
			"value": *args.MatchScore,
		})
	}

	id, err := s.admission.ApplyWithScore(ctx, args.CandidateID, args.OfferID, args.MatchScore)
	if err != nil {
		return nil, s.toMCPError("apply_to_offer", err)
	}

	response := map[string]interface{}{
		"application_id": id,
		"candidate_id":   args.CandidateID,
		"offer_id":       args.OfferID,
		"status":         types.StatusPending,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListMyApplications handles the list_my_applications tool invocation
func (s *Server) handleListMyApplications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listMyApplicationsArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("candidate_id", args.CandidateID); err != nil {
		return nil, err
	}

	apps, err := s.admission.ListMyApplications(ctx, args.CandidateID)
	if err != nil {
		return nil, s.toMCPError("list_my_applications", err)
	}

	response := map[string]interface{}{
		"candidate_id": args.CandidateID,
		"count":        len(apps),
		"applications": apps,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListOfferApplications handles the list_offer_applications tool invocation
func (s *Server) handleListOfferApplications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listOfferApplicationsArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("offer_id", args.OfferID); err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"offer_id": args.OfferID,
	}

	if args.IncludeCandidates {
		apps, err := s.admission.ListOfferApplicationsWithCandidates(ctx, args.OfferID)
		if err != nil {
			return nil, s.toMCPError("list_offer_applications", err)
		}
		for _, app := range apps {
			app.Candidate = withoutCandidateEmbedding(app.Candidate)
		}
		response["count"] = len(apps)
		response["applications"] = apps
	} else {
		apps, err := s.admission.ListOfferApplications(ctx, args.OfferID)
		if err != nil {
			return nil, s.toMCPError("list_offer_applications", err)
		}
		response["count"] = len(apps)
		response["applications"] = apps
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateApplicationStatus handles the update_application_status tool invocation
func (s *Server) handleUpdateApplicationStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateApplicationStatusArgs
	if err := decodeArgs(request, &args); err != nil {
		return nil, err
	}
	if err := requireParam("application_id", args.ApplicationID); err != nil {
		return nil, err
	}

	status, err := types.ParseApplicationStatus(args.Status)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid status", map[string]interface{}{
			"param":   "status",
			"value":   args.Status,
			"allowed": []types.ApplicationStatus{types.StatusUnderReview, types.StatusAccepted, types.StatusRejected},
		})
	}

	app, err := s.admission.UpdateStatus(ctx, args.ApplicationID, status)
	if err != nil {
		return nil, s.toMCPError("update_application_status", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"application": app,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.status.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"schema_version": status.SchemaVersion,
		"build_mode":     storage.BuildMode,
		"statistics": map[string]interface{}{
			"offers":               status.Offers,
			"active_offers":        status.ActiveOffers,
			"candidates":           status.Candidates,
			"candidate_embeddings": status.CandidateEmbeddings,
			"applications":         status.Applications,
			"open_applications":    status.OpenApplications,
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"vector_extension":     status.Health.VectorExtension,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// toMCPError maps a domain failure to its MCP error code
func (s *Server) toMCPError(tool string, err error) error {
	var (
		catalogErr *types.InvalidCatalogReferenceError
		embedErr   *types.EmbeddingError
	)

	switch {
	case errors.Is(err, types.ErrOfferNotFound):
		return newMCPError(ErrorCodeOfferNotFound, err.Error(), nil)
	case errors.Is(err, types.ErrCandidateNotFound):
		return newMCPError(ErrorCodeCandidateNotFound, err.Error(), nil)
	case errors.Is(err, types.ErrApplicationNotFound):
		return newMCPError(ErrorCodeApplicationNotFound, err.Error(), nil)
	case errors.As(err, &catalogErr):
		return newMCPError(ErrorCodeInvalidCatalogReference, err.Error(), map[string]interface{}{
			"kind": catalogErr.Kind,
			"id":   catalogErr.ID,
		})
	case errors.As(err, &embedErr):
		return newMCPError(ErrorCodeEmbeddingFailed, err.Error(), map[string]interface{}{
			"attempts": embedErr.Attempts,
		})
	case errors.Is(err, types.ErrDuplicateApplication):
		return newMCPError(ErrorCodeDuplicateApplication, err.Error(), nil)
	case errors.Is(err, types.ErrDailyApplicationLimit):
		return newMCPError(ErrorCodeDailyLimit, err.Error(), nil)
	case errors.Is(err, types.ErrInvalidStatusTransition):
		return newMCPError(ErrorCodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, admission.ErrInvalidArgument),
		errors.Is(err, retriever.ErrMissingSector),
		errors.Is(err, retriever.ErrInvalidTopK):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}

	s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	return newMCPError(ErrorCodeInternalError, tool+" failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// decodeArgs decodes the request arguments into out
func decodeArgs(request mcp.CallToolRequest, out interface{}) error {
	raw := request.Params.Arguments
	if raw == nil {
		raw = map[string]interface{}{}
	}
	args, ok := raw.(map[string]interface{})
	if !ok {
		return newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "mapstructure",
		DecodeHook: mapstructure.DecodeHookFuncType(rejectFractionalInts),
	})
	if err != nil {
		return newMCPError(ErrorCodeInternalError, "failed to build argument decoder", nil)
	}
	if err := decoder.Decode(args); err != nil {
		return newMCPError(ErrorCodeInvalidParams, "invalid arguments", map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return nil
}

// rejectFractionalInts refuses JSON numbers with a fractional part for
// integer fields, which mapstructure would otherwise truncate.
func rejectFractionalInts(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	if f, ok := data.(float64); ok && f != math.Trunc(f) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	return data, nil
}

// requireParam rejects a missing or blank string parameter
func requireParam(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
			"param":  name,
			"reason": "missing or empty",
		})
	}
	return nil
}

func withoutCandidateEmbedding(c *types.Candidate) *types.Candidate {
	if c == nil || len(c.Embedding) == 0 {
		return c
	}
	stripped := *c
	stripped.Embedding = nil
	return &stripped
}

func withoutOfferEmbedding(o *types.Offer) *types.Offer {
	if o == nil || len(o.Embedding) == 0 {
		return o
	}
	stripped := *o
	stripped.Embedding = nil
	return &stripped
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
