package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/troupe-ai/troupe/core"
)

// HandoffOptions configure a handoff tool.
type HandoffOptions struct {
	// Name overrides the generated tool name.
	Name string
	// Description overrides the generated description.
	Description string
}

// NewHandoff builds the tool that transfers the conversation to target. Its
// return value is the target agent itself, which the result normalizer turns
// into a handoff; the orchestrator performs the actual switch.
func NewHandoff(target *core.Agent, optFns ...func(o *HandoffOptions)) *FunctionTool {
	opts := HandoffOptions{
		Name:        "transfer_to_" + snakeCase(target.Name),
		Description: fmt.Sprintf("Transfer the conversation to %s. Use when %s is better suited to continue.", target.Name, target.Name),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return New(
		opts.Name,
		opts.Description,
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any, _ core.ContextVars) (any, error) {
			return target, nil
		},
	)
}

func snakeCase(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
