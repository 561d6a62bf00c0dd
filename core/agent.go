package core

import "context"

// DefaultInstructions is used when an agent declares neither static nor
// dynamic instructions.
const DefaultInstructions = "You are a helpful agent."

// Agent is a named configuration of instructions, model and tools
// representing one conversational persona. Agents are long-lived and
// immutable once constructed.
//
// Instructions may be a static string or, when InstructionsFunc is set, a
// function of the current context variables. InstructionsFunc takes
// precedence over Instructions.
type Agent struct {
	// Name identifies the agent; it is stamped as Sender on every assistant
	// message the agent produces.
	Name string

	// Instructions is the static system prompt.
	Instructions string

	// InstructionsFunc derives the system prompt from the live context
	// variables at the start of each turn.
	InstructionsFunc func(vars ContextVars) string

	// Model is the backend model identifier (e.g. "gpt-4o-mini").
	Model string

	// Tools is the ordered set of callables exposed to the model.
	Tools []Tool

	// ToolChoice is the provider tool-selection policy ("auto", "none",
	// "required"). Empty means provider default.
	ToolChoice string

	// ParallelToolCalls lets the model emit several tool calls in one turn.
	// Only forwarded to the backend when the agent has tools.
	ParallelToolCalls bool
}

// ResolveInstructions returns the system prompt for the current turn.
func (a *Agent) ResolveInstructions(vars ContextVars) string {
	if a.InstructionsFunc != nil {
		return a.InstructionsFunc(vars)
	}
	if a.Instructions != "" {
		return a.Instructions
	}
	return DefaultInstructions
}

// FindTool resolves a tool by name over the agent's ordered tool list.
func (a *Agent) FindTool(name string) (Tool, bool) {
	for _, t := range a.Tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// ContextVarsParam is the reserved argument name for context-variable
// injection. It never appears in the schemas sent to the model; the
// completion adapter strips it defensively from user-supplied schemas.
const ContextVarsParam = "context_variables"

// Tool is a caller-supplied capability exposed to the model. Implementations
// should be safe for reuse across turns; the orchestrator invokes tools
// sequentially within a turn.
//
// WantsContextVars is an explicit capability flag declared at construction
// time: when true, the dispatcher injects the live context-variable mapping
// into Call. This replaces runtime signature introspection.
type Tool interface {
	Name() string
	Description() string

	// Parameters returns a JSON-Schema object describing the accepted
	// arguments.
	Parameters() map[string]any

	WantsContextVars() bool

	// Call executes the tool. vars is nil unless WantsContextVars is true.
	// The return value must be a string, a Result, an *Agent, or any value
	// convertible by NormalizeResult.
	Call(ctx context.Context, args map[string]any, vars ContextVars) (any, error)
}
