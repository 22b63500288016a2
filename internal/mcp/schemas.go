package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// executeMatchingTool returns the tool definition for execute_matching
func executeMatchingTool() mcp.Tool {
	return mcp.Tool{
		Name:        "execute_matching",
		Description: "Rank the candidates of an offer's sector against the offer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"offer_id": stringProperty("ID of the offer to match"),
			},
			Required: []string{"offer_id"},
		},
	}
}

// offersForCandidateTool returns the tool definition for offers_for_candidate
func offersForCandidateTool() mcp.Tool {
	return mcp.Tool{
		Name:        "offers_for_candidate",
		Description: "Rank the active offers of a candidate's sector for the candidate",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"candidate_id": stringProperty("ID of the candidate"),
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of offers to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"candidate_id"},
		},
	}
}

// applyToOfferTool returns the tool definition for apply_to_offer
func applyToOfferTool() mcp.Tool {
	return mcp.Tool{
		Name:        "apply_to_offer",
		Description: "Submit an application, enforcing the duplicate and daily quota rules",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"candidate_id": stringProperty("ID of the applying candidate"),
				"offer_id":     stringProperty("ID of the offer"),
				"match_score": map[string]interface{}{
					"type":        "number",
					"description": "Match score shown to the candidate, carried onto the application",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"candidate_id", "offer_id"},
		},
	}
}

// listMyApplicationsTool returns the tool definition for list_my_applications
func listMyApplicationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_my_applications",
		Description: "List a candidate's applications, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"candidate_id": stringProperty("ID of the candidate"),
			},
			Required: []string{"candidate_id"},
		},
	}
}

// listOfferApplicationsTool returns the tool definition for list_offer_applications
func listOfferApplicationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_offer_applications",
		Description: "List the applications received by an offer, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"offer_id": stringProperty("ID of the offer"),
				"include_candidates": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, attach each applicant's profile",
					"default":     false,
				},
			},
			Required: []string{"offer_id"},
		},
	}
}

// updateApplicationStatusTool returns the tool definition for update_application_status
func updateApplicationStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_application_status",
		Description: "Move an application to a new review status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"application_id": stringProperty("ID of the application"),
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Target status",
					"enum":        []string{"UNDER_REVIEW", "ACCEPTED", "REJECTED"},
				},
			},
			Required: []string{"application_id", "status"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report store statistics and health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
