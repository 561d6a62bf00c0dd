// Package tool implements the function-calling subsystem: adapters that
// expose plain Go functions to agents with schema-validated arguments, a
// struct-to-JSON-Schema generator, and the handoff helper that transfers a
// conversation to another agent.
package tool

import (
	"context"
	"fmt"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/internal/util"
)

// Func is the implementation signature wrapped by FunctionTool. vars is nil
// unless the tool was built with WithContextVars; args are already validated
// against the declared schema.
type Func func(ctx context.Context, args map[string]any, vars core.ContextVars) (any, error)

// Options configure a FunctionTool.
type Options struct {
	// WantsContextVars requests injection of the live context-variable
	// mapping. It is declared here, at registration time, instead of being
	// inferred from the function signature.
	WantsContextVars bool
}

// WithContextVars marks the tool as a consumer of the shared context
// variables.
func WithContextVars() func(o *Options) {
	return func(o *Options) { o.WantsContextVars = true }
}

// FunctionTool is a generic adapter that exposes a plain Go function as a
// core.Tool. It has no internal mutable state after construction and is safe
// for reuse across turns and runs.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	wantsVars   bool
	fn          Func
}

var _ core.Tool = (*FunctionTool)(nil)

// New constructs a FunctionTool from an explicit JSON-Schema parameter map
// and a function.
//
// Example:
//
//	sum := tool.New(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any, _ core.ContextVars) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func New(name, description string, parameters map[string]any, fn Func, optFns ...func(o *Options)) *FunctionTool {
	var opts Options
	for _, f := range optFns {
		f(&opts)
	}
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		wantsVars:   opts.WantsContextVars,
		fn:          fn,
	}
}

// NewFromStruct derives the parameter schema from an argument struct via
// GenerateSchema, so the tool's model-facing contract lives in struct tags.
func NewFromStruct[T any](name, description string, fn Func, optFns ...func(o *Options)) *FunctionTool {
	return New(name, description, GenerateSchema[T](), fn, optFns...)
}

// Name returns the unique tool name used in function call routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// WantsContextVars reports whether the dispatcher should inject the live
// context-variable mapping.
func (t *FunctionTool) WantsContextVars() bool { return t.wantsVars }

// Call validates args against the declared schema and invokes the wrapped
// function. A validation failure is an invocation error: it is fatal to the
// run, like any other tool error.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any, vars core.ContextVars) (any, error) {
	if err := util.ValidateArgs(args, t.parameters); err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.name, err)
	}
	return t.fn(ctx, args, vars)
}
