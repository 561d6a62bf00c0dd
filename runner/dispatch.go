package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/troupe-ai/troupe/core"
)

// dispatchOutcome aggregates the effects of one turn's tool calls.
type dispatchOutcome struct {
	messages  []core.Message
	vars      core.ContextVars
	nextAgent *core.Agent
}

// dispatchToolCalls executes the turn's tool calls sequentially, in the
// order the model requested them.
//
// Failure taxonomy: an unresolved tool name is recoverable per call and
// yields an error-content tool message; a malformed argument payload, a tool
// invocation error or an unnormalizable return value is fatal to the run.
//
// Context-variable deltas merge right-biased across calls (later calls win);
// the next agent is first-wins (later handoffs in the same turn are
// ignored). This asymmetry is deliberate.
func (r *Runner) dispatchToolCalls(ctx context.Context, calls []core.ToolCall, agent *core.Agent, vars core.ContextVars) (dispatchOutcome, error) {
	outcome := dispatchOutcome{vars: core.ContextVars{}}

	for _, call := range calls {
		name := call.Function.Name

		t, ok := agent.FindTool(name)
		if !ok {
			r.logger.Warn("dispatch.tool.missing", "agent", agent.Name, "tool", name)
			outcome.messages = append(outcome.messages, core.Message{
				Role:       core.RoleTool,
				ToolCallID: call.ID,
				ToolName:   name,
				Content:    fmt.Sprintf("Error: Tool %s not found.", name),
			})
			continue
		}

		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return dispatchOutcome{}, fmt.Errorf("malformed arguments for tool %s: %w", name, err)
			}
		}

		var injected core.ContextVars
		if t.WantsContextVars() {
			injected = vars
		}

		start := time.Now()
		raw, err := t.Call(ctx, args, injected)
		if err != nil {
			r.logger.Error("dispatch.tool.failed", "agent", agent.Name, "tool", name, "error", err.Error())
			return dispatchOutcome{}, fmt.Errorf("tool %s: %w", name, err)
		}
		res, err := core.NormalizeResult(raw)
		if err != nil {
			return dispatchOutcome{}, err
		}
		r.logger.Info("dispatch.tool.executed",
			"agent", agent.Name,
			"tool", name,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		outcome.messages = append(outcome.messages, core.Message{
			Role:       core.RoleTool,
			ToolCallID: call.ID,
			ToolName:   name,
			Content:    res.Value,
		})
		outcome.vars.Merge(res.ContextVars)

		if res.Agent != nil && outcome.nextAgent == nil {
			outcome.nextAgent = res.Agent
			r.logger.Debug("dispatch.handoff.requested", "tool", name, "agent", res.Agent.Name)
		}
	}
	return outcome, nil
}
