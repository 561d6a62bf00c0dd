package runner

import (
	"context"
	"fmt"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/internal/util"
	"github.com/troupe-ai/troupe/logging"
	"github.com/troupe-ai/troupe/model"
)

// DefaultMaxTurns bounds a run when the caller does not override it.
const DefaultMaxTurns = 10

// Options holds construction-time overrides passed to New.
type Options struct {
	Logger logging.Logger
}

// Runner drives conversations for agents against one model backend. A Runner
// is stateless between runs and safe for concurrent use; all mutable state
// (history, context variables, the active agent) is scoped to a single Run
// or RunStream invocation.
type Runner struct {
	model  model.Model
	logger logging.Logger
}

// New constructs a Runner bound to the given backend.
func New(m model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{model: m, logger: opts.Logger}
}

// RunOptions configure one run. The zero value is not used directly; Run and
// RunStream start from defaults and apply RunOption functions.
type RunOptions struct {
	// ContextVars seed the shared state. The runner clones them; the
	// caller's map is never mutated.
	ContextVars core.ContextVars
	// ModelOverride replaces the agent's model identifier for every
	// completion of this run.
	ModelOverride string
	// MaxTurns bounds the number of completion requests. Zero or negative
	// means unbounded.
	MaxTurns int
	// ExecuteTools, when false, stops the run after the first assistant
	// message even if it carries tool calls.
	ExecuteTools bool
}

// RunOption mutates RunOptions.
type RunOption func(o *RunOptions)

// WithContextVars seeds the run's shared context variables.
func WithContextVars(vars core.ContextVars) RunOption {
	return func(o *RunOptions) { o.ContextVars = vars }
}

// WithModelOverride replaces the agent's model identifier for this run.
func WithModelOverride(modelID string) RunOption {
	return func(o *RunOptions) { o.ModelOverride = modelID }
}

// WithMaxTurns bounds the number of turns; pass 0 for unbounded.
func WithMaxTurns(n int) RunOption {
	return func(o *RunOptions) { o.MaxTurns = n }
}

// WithoutToolExecution disables tool dispatch: the run returns after the
// first completion regardless of tool calls.
func WithoutToolExecution() RunOption {
	return func(o *RunOptions) { o.ExecuteTools = false }
}

func newRunOptions(optFns []RunOption) RunOptions {
	opts := RunOptions{
		ContextVars:  core.ContextVars{},
		MaxTurns:     DefaultMaxTurns,
		ExecuteTools: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Run executes the non-streaming turn loop: request a completion for the
// active agent, execute any tool calls, merge context deltas, switch agents
// on handoff, and repeat until a turn produces no tool calls or MaxTurns is
// exhausted. Exhausting MaxTurns is a normal termination.
//
// The returned Response carries only the history appended during this run,
// the final active agent and the final context variables.
func (r *Runner) Run(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...RunOption) (*core.Response, error) {
	opts := newRunOptions(optFns)

	runID := util.NewID()
	active := agent
	vars := opts.ContextVars.Clone()
	history := core.CloneMessages(messages)
	initLen := len(history)

	r.logger.Debug("run.start", "run_id", runID, "agent", active.Name, "seed_messages", initLen)

	for turn := 0; opts.MaxTurns <= 0 || turn < opts.MaxTurns; turn++ {
		req := r.buildRequest(active, history, vars, opts.ModelOverride)
		msg, err := r.model.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("completion for agent %s: %w", active.Name, err)
		}
		msg.Sender = active.Name
		history = append(history, *msg)
		r.logger.Debug("run.completion", "run_id", runID, "agent", active.Name, "tool_calls", len(msg.ToolCalls))

		if len(msg.ToolCalls) == 0 || !opts.ExecuteTools {
			r.logger.Debug("run.turn.end", "run_id", runID, "agent", active.Name)
			break
		}

		outcome, err := r.dispatchToolCalls(ctx, msg.ToolCalls, active, vars)
		if err != nil {
			return nil, err
		}
		history = append(history, outcome.messages...)
		vars.Merge(outcome.vars)

		if outcome.nextAgent != nil && outcome.nextAgent != active {
			active = outcome.nextAgent
			history = append(history, transferNotice(active))
			r.logger.Info("run.handoff", "run_id", runID, "agent", active.Name)
			continue
		}
	}

	return &core.Response{
		Messages:    history[initLen:],
		Agent:       active,
		ContextVars: vars,
	}, nil
}

// transferNotice records an agent switch in the history so the next agent
// sees the transfer.
func transferNotice(next *core.Agent) core.Message {
	return core.Message{
		Role:    core.RoleSystem,
		Content: fmt.Sprintf("Conversation transferred to %s", next.Name),
	}
}
