package runner

import (
	"sort"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/model"
)

// toolCallAccum reconstructs one in-progress tool call from fragments that
// share a stream index. String sub-fields accumulate by concatenation;
// providers send id/type/name once and arguments in pieces, so
// concatenation handles both cases uniformly.
type toolCallAccum struct {
	id        string
	callType  string
	name      string
	arguments string
}

// accumulator folds streamed deltas into one assistant message. Content
// always appends; tool-call fragments merge per index. Deltas may populate
// fields in any order as long as index keys are stable across the stream.
type accumulator struct {
	content   string
	toolCalls map[int]*toolCallAccum
}

func newAccumulator() *accumulator {
	return &accumulator{toolCalls: make(map[int]*toolCallAccum)}
}

// merge folds one delta into the accumulator. Role and sender are transient
// per-delta fields and are not accumulated.
func (a *accumulator) merge(d model.Delta) {
	a.content += d.Content
	for _, tc := range d.ToolCalls {
		acc, ok := a.toolCalls[tc.Index]
		if !ok {
			acc = &toolCallAccum{}
			a.toolCalls[tc.Index] = acc
		}
		acc.id += tc.ID
		acc.callType += tc.Type
		acc.name += tc.Name
		acc.arguments += tc.Arguments
	}
}

// message flattens the accumulated state into a complete assistant message.
// Tool calls are ordered by stream index; no calls means a nil slice, the
// explicit absence marker the turn loop branches on.
func (a *accumulator) message(sender string) core.Message {
	msg := core.Message{
		Role:    core.RoleAssistant,
		Content: a.content,
		Sender:  sender,
	}
	if len(a.toolCalls) == 0 {
		return msg
	}

	indexes := make([]int, 0, len(a.toolCalls))
	for i := range a.toolCalls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	msg.ToolCalls = make([]core.ToolCall, 0, len(indexes))
	for _, i := range indexes {
		acc := a.toolCalls[i]
		msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
			ID:   acc.id,
			Type: acc.callType,
			Function: core.ToolCallFunction{
				Name:      acc.name,
				Arguments: acc.arguments,
			},
		})
	}
	return msg
}
