// Package mcp implements the Model Context Protocol (MCP) server for the
// matching engine.
//
// The server exposes the ranking and admission operations as tools:
//   - execute_matching: rank the candidates of an offer's sector
//   - offers_for_candidate: rank the active offers of a candidate's sector
//   - apply_to_offer: submit an application
//   - list_my_applications: a candidate's applications
//   - list_offer_applications: the applications an offer received
//   - update_application_status: move an application through review
//   - get_status: store statistics and health
//
// MCP is JSON-RPC 2.0 over stdio. The server is started with:
//
//	cailmatch serve
//
// # Tool: execute_matching
//
//	Request:
//	{
//	  "name": "execute_matching",
//	  "arguments": {"offer_id": "offer-1"}
//	}
//
//	Response:
//	{
//	  "offer_id": "offer-1",
//	  "count": 2,
//	  "results": [
//	    {
//	      "candidate_id": "cand-7",
//	      "offer_id": "offer-1",
//	      "match_score": 0.92,
//	      "breakdown": {
//	        "similarity": 0.8,
//	        "mandatory_skills": 1,
//	        "desirable_skills": 1,
//	        "level": 1
//	      },
//	      "candidate": {"id": "cand-7", "skills": ["go", "docker"], ...}
//	    },
//	    ...
//	  ]
//	}
//
// Embeddings are never included in responses.
//
// # Tool: apply_to_offer
//
//	Request:
//	{
//	  "name": "apply_to_offer",
//	  "arguments": {
//	    "candidate_id": "cand-7",
//	    "offer_id": "offer-1",
//	    "match_score": 0.92
//	  }
//	}
//
//	Response:
//	{
//	  "application_id": "5f0c...",
//	  "candidate_id": "cand-7",
//	  "offer_id": "offer-1",
//	  "status": "PENDING"
//	}
//
// # Error Codes
//
//	-32602: Invalid params (missing or blank IDs, limit outside 1-100, unknown status)
//	-32603: Internal error
//	-32001: Offer not found
//	-32002: Offer references an unknown sector or level
//	-32003: Embedding generation failed after retries
//	-32004: An open application already exists for the pair
//	-32005: Daily application limit reached
//	-32006: Candidate not found
//	-32007: Application not found
//	-32008: Status transition not allowed
//
// Errors carry a data object with details where one applies, for example
//
//	{"code": -32002, "message": "invalid SECTOR catalog reference 'SEC_X'",
//	 "data": {"kind": "SECTOR", "id": "SEC_X"}}
package mcp
