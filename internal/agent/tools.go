package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stowage-labs/stowage/internal/dimension"
	"github.com/stowage-labs/stowage/internal/search"
)

// Tool names advertised to the engine.
const (
	toolLookupProduct     = "lookup_known_product"
	toolExtractDimensions = "extract_explicit_dimensions"
)

// Fixed reasons reported when a tool was never invoked.
const (
	reasonNoLookupNeeded = "Agent did not need product lookup"
	reasonNoDimensions   = "No explicit dimensions in input"
)

// toolRequest is one decoded tool invocation from an engine turn. The two
// supported tools form a closed set; anything else is rejected with a typed
// error payload rather than executed.
type toolRequest struct {
	id    string
	name  string
	input json.RawMessage
}

// toolOutcome is the executed result of one tool request. Payload is what
// goes back to the engine as the tool response; display is the short summary
// kept for the final tool-usage report.
type toolOutcome struct {
	payload any
	display string
	isError bool
}

// toolError is the payload returned to the engine when a tool fails or an
// unknown tool is requested. The session continues either way.
type toolError struct {
	Error string `json:"error"`
}

type lookupArgs struct {
	Query string `json:"query"`
}

type extractArgs struct {
	Text string `json:"text"`
}

// session accumulates tool evidence across the turns of one classification.
// The most recent outcome per tool wins, matching how the engine sees the
// conversation.
type session struct {
	dimensionEvidence *dimension.Result
	lookupEvidence    *search.Lookup
}

// runTool executes one tool request against the closed tool set and records
// evidence for the fallback path. Tool failures never abort the loop.
func (c *Classifier) runTool(ctx context.Context, s *session, req toolRequest) toolOutcome {
	switch req.name {
	case toolLookupProduct:
		var args lookupArgs
		if err := json.Unmarshal(req.input, &args); err != nil {
			return errorOutcome(fmt.Sprintf("invalid %s arguments: %v", toolLookupProduct, err))
		}
		result, err := c.search.Lookup(ctx, args.Query)
		if err != nil {
			c.logger.Error("product lookup failed", "query", args.Query, "error", err)
			return errorOutcome(err.Error())
		}
		s.lookupEvidence = &result
		return toolOutcome{payload: result, display: result.Message}

	case toolExtractDimensions:
		var args extractArgs
		if err := json.Unmarshal(req.input, &args); err != nil {
			return errorOutcome(fmt.Sprintf("invalid %s arguments: %v", toolExtractDimensions, err))
		}
		result := dimension.Extract(args.Text)
		s.dimensionEvidence = &result
		return toolOutcome{payload: result, display: result.Summary}

	default:
		return errorOutcome(fmt.Sprintf("Unknown tool: %s", req.name))
	}
}

func errorOutcome(msg string) toolOutcome {
	return toolOutcome{
		payload: toolError{Error: msg},
		display: msg,
		isError: true,
	}
}
