package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/troupe-ai/troupe/core"
)

// Turn is one scripted completion: assistant text, optionally followed by
// tool calls the backend "decides" to make.
type Turn struct {
	Content   string
	ToolCalls []core.ToolCall
}

// ScriptedModel is a deterministic in-memory Model for tests and examples.
// Each Complete or Stream call consumes the next scripted turn; when the
// script is exhausted the model keeps answering with a fixed fallback
// message. Streaming splits content and tool-call arguments into small
// fragments to exercise delta reassembly downstream.
type ScriptedModel struct {
	mu       sync.Mutex
	turns    []Turn
	cursor   int
	requests []Request

	// FragmentSize controls how many bytes of content / argument text each
	// streamed delta carries. Defaults to 3.
	FragmentSize int
}

// NewScriptedModel constructs a ScriptedModel that will play back the given
// turns in order.
func NewScriptedModel(turns ...Turn) *ScriptedModel {
	return &ScriptedModel{turns: turns, FragmentSize: 3}
}

// Requests returns a copy of every request the model has received, in order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls reports how many completions have been requested.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *ScriptedModel) next(req Request) Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.cursor >= len(m.turns) {
		return Turn{Content: "I have nothing further to add."}
	}
	t := m.turns[m.cursor]
	m.cursor++
	return t
}

// Complete implements Model.
func (m *ScriptedModel) Complete(_ context.Context, req Request) (*core.Message, error) {
	t := m.next(req)
	msg := &core.Message{Role: core.RoleAssistant, Content: t.Content}
	if len(t.ToolCalls) > 0 {
		msg.ToolCalls = make([]core.ToolCall, len(t.ToolCalls))
		copy(msg.ToolCalls, t.ToolCalls)
	}
	return msg, nil
}

// Stream implements Model. It emits a role delta, content fragments, then
// per-call fragments of id/name/arguments keyed by a stable index.
func (m *ScriptedModel) Stream(ctx context.Context, req Request) (<-chan Delta, <-chan error) {
	t := m.next(req)
	out := make(chan Delta, 32)
	errCh := make(chan error, 1)

	size := m.FragmentSize
	if size <= 0 {
		size = 3
	}

	go func() {
		defer close(out)
		defer close(errCh)

		emit := func(d Delta) bool {
			// Cancellation takes priority over buffer space.
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
			case out <- d:
				return true
			}
		}

		if !emit(Delta{Role: core.RoleAssistant}) {
			return
		}
		for _, frag := range fragments(t.Content, size) {
			if !emit(Delta{Content: frag}) {
				return
			}
		}
		for i, tc := range t.ToolCalls {
			head := Delta{ToolCalls: []ToolCallDelta{{
				Index: i, ID: tc.ID, Type: tc.Type, Name: tc.Function.Name,
			}}}
			if !emit(head) {
				return
			}
			for _, frag := range fragments(tc.Function.Arguments, size) {
				if !emit(Delta{ToolCalls: []ToolCallDelta{{Index: i, Arguments: frag}}}) {
					return
				}
			}
		}
	}()
	return out, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: fmt.Sprintf("scripted-%d", len(m.turns)), Provider: "scripted", SupportsTools: true}
}

func fragments(s string, size int) []string {
	if s == "" {
		return nil
	}
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	return append(out, s)
}
