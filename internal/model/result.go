package model

// ToolInvocation describes whether a single agent tool ran during a
// classification, and with what outcome. Exactly one of Result and Reason is
// set: Result summarizes a call that happened, Reason explains why none did.
type ToolInvocation struct {
	Called bool   `json:"called"`
	Result string `json:"result,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ToolUsage records the invocation status of both advertised tools. Both
// fields are always populated in a final result.
type ToolUsage struct {
	LookupKnownProduct        ToolInvocation `json:"lookup_known_product"`
	ExtractExplicitDimensions ToolInvocation `json:"extract_explicit_dimensions"`
}

// ClassificationResult is the output of one classification request.
// Confidence is clamped into [0,100] before the result is returned.
type ClassificationResult struct {
	Classification Category  `json:"classification"`
	Confidence     int       `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	ToolsUsed      ToolUsage `json:"tools_used"`
}

// ClampConfidence forces a confidence value into the valid [0,100] range.
func ClampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
