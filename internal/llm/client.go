// Package llm provides the reasoning-engine client used by the
// classification agent. It speaks the Anthropic Messages API with tool use
// and maps transport failures onto a small caller-safe error taxonomy.
package llm

import (
	"context"
	"encoding/json"
)

// Client is the interface to the external reasoning engine.
type Client interface {
	// CreateMessage sends one conversation turn. The response either
	// requests tool invocations (StopReason "tool_use") or carries the
	// terminal text answer. Transport failures are returned as errors from
	// the package taxonomy; they are never retried here.
	CreateMessage(ctx context.Context, req Request) (*Response, error)
}

// ToolSpec advertises one tool to the engine.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ContentBlock is one block of a message: text, a tool-use request from the
// engine, or a tool result sent back to it.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// Block types used on the wire.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// StopReasonToolUse indicates the engine wants tools executed before it can
// continue.
const StopReasonToolUse = "tool_use"

// Message is one conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UserText builds a plain-text user message.
func UserText(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

// Request is one call to the reasoning engine.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Response is the engine's reply to one turn.
type Response struct {
	ID         string         `json:"id"`
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
}

// Text concatenates all text blocks in the response.
func (r *Response) Text() string {
	var text string
	for _, block := range r.Content {
		if block.Type == BlockText {
			text += block.Text
		}
	}
	return text
}

// ToolUses returns the tool-use blocks in the order the engine requested
// them.
func (r *Response) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range r.Content {
		if block.Type == BlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}
