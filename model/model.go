package model

import (
	"context"

	"github.com/troupe-ai/troupe/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the orchestrator:
// resolved instructions already sit at the head of Messages as a system
// message.
type Request struct {
	Model      string           `json:"model"`
	Messages   []core.Message   `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`

	// ParallelToolCalls is only set when the request carries tools.
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`
}

// Delta is one incremental fragment of a streamed completion. Fields are
// partial: a delta may carry any subset of role, content and tool-call
// fragments. Sender is stamped by the orchestrator on assistant deltas
// before they are surfaced to callers.
type Delta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	Sender    string          `json:"sender,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is a fragment of one in-progress tool call. Index keys the
// call within the stream and is stable across fragments; the string fields
// accumulate by concatenation.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal backend interface required by the orchestrator.
//
// Complete returns the single selected message of a completion. Stream
// returns a delta channel and an error channel; both are closed when the
// stream ends, and the delta source is consumed exactly once. Neither path
// retries: backend errors propagate to the caller of the run.
type Model interface {
	Complete(ctx context.Context, req Request) (*core.Message, error)
	Stream(ctx context.Context, req Request) (<-chan Delta, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}
