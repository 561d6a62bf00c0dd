package runner

import (
	"context"
	"fmt"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/internal/util"
	"github.com/troupe-ai/troupe/model"
)

// EventType discriminates streaming events.
type EventType string

const (
	// EventTurnStart delimits the beginning of one turn's delta stream.
	EventTurnStart EventType = "turn_start"
	// EventDelta carries one completion fragment.
	EventDelta EventType = "delta"
	// EventTurnEnd delimits the end of one turn's delta stream.
	EventTurnEnd EventType = "turn_end"
	// EventResponse is the terminal event carrying the completed Response.
	EventResponse EventType = "response"
)

// Event is one item of the streaming run's event sequence. Delta is set for
// EventDelta, Response for EventResponse.
type Event struct {
	Type     EventType
	Delta    *model.Delta
	Response *core.Response
}

// RunStream executes the same turn loop as Run but surfaces the model output
// incrementally: an EventTurnStart precedes and an EventTurnEnd follows each
// turn's deltas, assistant deltas are stamped with the active agent's name
// before they are emitted, and the final event carries the completed
// Response.
//
// The event sequence is lazy, single-pass and non-restartable. Sends are
// unbuffered: the producer suspends on every event until the caller reads
// it. Both channels close when the run ends; a fatal error is delivered on
// the error channel and ends the sequence without a Response event.
func (r *Runner) RunStream(ctx context.Context, agent *core.Agent, messages []core.Message, optFns ...RunOption) (<-chan Event, <-chan error) {
	opts := newRunOptions(optFns)

	events := make(chan Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errCh)

		runID := util.NewID()
		active := agent
		vars := opts.ContextVars.Clone()
		history := core.CloneMessages(messages)
		initLen := len(history)

		emit := func(ev Event) bool {
			// Cancellation takes priority over a ready receiver.
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			default:
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			case events <- ev:
				return true
			}
		}

		r.logger.Debug("stream.start", "run_id", runID, "agent", active.Name, "seed_messages", initLen)

		for turn := 0; opts.MaxTurns <= 0 || turn < opts.MaxTurns; turn++ {
			req := r.buildRequest(active, history, vars, opts.ModelOverride)
			deltas, errs := r.model.Stream(ctx, req)

			if !emit(Event{Type: EventTurnStart}) {
				return
			}
			acc := newAccumulator()
			for d := range deltas {
				if d.Role == core.RoleAssistant {
					d.Sender = active.Name
				}
				out := d
				if !emit(Event{Type: EventDelta, Delta: &out}) {
					return
				}
				acc.merge(d)
			}
			if err := <-errs; err != nil {
				errCh <- fmt.Errorf("completion for agent %s: %w", active.Name, err)
				return
			}
			if !emit(Event{Type: EventTurnEnd}) {
				return
			}

			msg := acc.message(active.Name)
			history = append(history, msg)
			r.logger.Debug("stream.completion", "run_id", runID, "agent", active.Name, "tool_calls", len(msg.ToolCalls))

			if len(msg.ToolCalls) == 0 || !opts.ExecuteTools {
				r.logger.Debug("stream.turn.end", "run_id", runID, "agent", active.Name)
				break
			}

			outcome, err := r.dispatchToolCalls(ctx, msg.ToolCalls, active, vars)
			if err != nil {
				errCh <- err
				return
			}
			history = append(history, outcome.messages...)
			vars.Merge(outcome.vars)

			if outcome.nextAgent != nil && outcome.nextAgent != active {
				active = outcome.nextAgent
				history = append(history, transferNotice(active))
				r.logger.Info("stream.handoff", "run_id", runID, "agent", active.Name)
				continue
			}
		}

		emit(Event{Type: EventResponse, Response: &core.Response{
			Messages:    history[initLen:],
			Agent:       active,
			ContextVars: vars,
		}})
	}()

	return events, errCh
}
