package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/internal/storage"
	"github.com/juan975/cail-matching/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "cail-matching"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Matcher ranks candidates for offers and offers for candidates
type Matcher interface {
	ExecuteMatching(ctx context.Context, offerID string) ([]types.MatchResult, error)
	OffersForCandidate(ctx context.Context, candidateID string, limit int) ([]types.OfferMatch, error)
}

// Admission submits, lists and reviews applications
type Admission interface {
	ApplyWithScore(ctx context.Context, candidateID, offerID string, matchScore *float64) (string, error)
	ListMyApplications(ctx context.Context, candidateID string) ([]*types.Application, error)
	ListOfferApplications(ctx context.Context, offerID string) ([]*types.Application, error)
	ListOfferApplicationsWithCandidates(ctx context.Context, offerID string) ([]*types.ApplicationWithCandidate, error)
	UpdateStatus(ctx context.Context, applicationID string, status types.ApplicationStatus) (*types.Application, error)
}

// StatusSource reports store statistics
type StatusSource interface {
	GetStatus(ctx context.Context) (*storage.Status, error)
}

// Deps are the collaborators the tools call into
type Deps struct {
	Matcher   Matcher
	Admission Admission
	Status    StatusSource
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	matcher   Matcher
	admission Admission
	status    StatusSource
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance with every tool registered
func NewServer(deps Deps, log *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		matcher:   deps.Matcher,
		admission: deps.Admission,
		status:    deps.Status,
		logger:    logger.Named(log, "mcp"),
	}

	s.registerTools()

	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(executeMatchingTool(), s.handleExecuteMatching)
	s.mcp.AddTool(offersForCandidateTool(), s.handleOffersForCandidate)
	s.mcp.AddTool(applyToOfferTool(), s.handleApplyToOffer)
	s.mcp.AddTool(listMyApplicationsTool(), s.handleListMyApplications)
	s.mcp.AddTool(listOfferApplicationsTool(), s.handleListOfferApplications)
	s.mcp.AddTool(updateApplicationStatusTool(), s.handleUpdateApplicationStatus)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
