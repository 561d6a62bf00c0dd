package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/model"
	"github.com/troupe-ai/troupe/tool"
)

func userMessage(content string) core.Message {
	return core.Message{Role: core.RoleUser, Content: content}
}

func callTo(id, name, args string) core.ToolCall {
	return core.ToolCall{
		ID:   id,
		Type: "function",
		Function: core.ToolCallFunction{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRunNoToolCallsEndsAfterOneCompletion(t *testing.T) {
	m := model.NewScriptedModel(model.Turn{Content: "Hi there!"})
	agent := &core.Agent{Name: "Greeter", Model: "gpt-4o"}

	resp, err := New(m).Run(context.Background(), agent, []core.Message{userMessage("Hi")}, WithMaxTurns(50))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Calls())
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Hi there!", resp.Messages[0].Content)
	assert.Equal(t, "Greeter", resp.Messages[0].Sender)
	assert.Same(t, agent, resp.Agent)
}

func TestRunExecutesToolAndContinues(t *testing.T) {
	echo := tool.New("echo", "Echo the input back", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(_ context.Context, args map[string]any, _ core.ContextVars) (any, error) {
		return args["text"], nil
	})

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "echo", `{"text":"ping"}`)}},
		model.Turn{Content: "The echo said ping."},
	)
	agent := &core.Agent{Name: "Echoer", Tools: []core.Tool{echo}}

	resp, err := New(m).Run(context.Background(), agent, []core.Message{userMessage("echo ping")})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Calls())
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, core.RoleAssistant, resp.Messages[0].Role)
	assert.Equal(t, core.RoleTool, resp.Messages[1].Role)
	assert.Equal(t, "call_1", resp.Messages[1].ToolCallID)
	assert.Equal(t, "ping", resp.Messages[1].Content)
	assert.Equal(t, "The echo said ping.", resp.Messages[2].Content)
}

func TestRunMissingToolIsRecoverable(t *testing.T) {
	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "missing_tool", "{}")}},
		model.Turn{Content: "Sorry, I could not do that."},
	)
	agent := &core.Agent{Name: "Agent"}

	resp, err := New(m).Run(context.Background(), agent, nil)
	require.NoError(t, err)

	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "Error: Tool missing_tool not found.", resp.Messages[1].Content)
	assert.Equal(t, "missing_tool", resp.Messages[1].ToolName)
}

func TestRunToolErrorIsFatal(t *testing.T) {
	boom := errors.New("upstream unavailable")
	failing := tool.New("lookup", "Look something up", nil,
		func(context.Context, map[string]any, core.ContextVars) (any, error) {
			return nil, boom
		})

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "lookup", "{}")}},
	)
	agent := &core.Agent{Name: "Agent", Tools: []core.Tool{failing}}

	resp, err := New(m).Run(context.Background(), agent, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRunMalformedArgumentsIsFatal(t *testing.T) {
	noop := tool.New("noop", "Do nothing", nil,
		func(context.Context, map[string]any, core.ContextVars) (any, error) {
			return "ok", nil
		})

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "noop", `{"broken`)}},
	)
	agent := &core.Agent{Name: "Agent", Tools: []core.Tool{noop}}

	_, err := New(m).Run(context.Background(), agent, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed arguments for tool noop")
}

func TestRunHandoffSwitchesAgent(t *testing.T) {
	sales := &core.Agent{Name: "Sales Agent"}
	triage := &core.Agent{Name: "Triage Agent", Tools: []core.Tool{tool.NewHandoff(sales)}}

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "transfer_to_sales_agent", "{}")}},
		model.Turn{Content: "Hello, this is sales."},
	)

	resp, err := New(m).Run(context.Background(), triage, []core.Message{userMessage("I want to buy")}, WithMaxTurns(3))
	require.NoError(t, err)

	assert.Same(t, sales, resp.Agent)
	require.Len(t, resp.Messages, 4)
	assert.Equal(t, core.RoleSystem, resp.Messages[2].Role)
	assert.Equal(t, "Conversation transferred to Sales Agent", resp.Messages[2].Content)
	assert.Equal(t, "Sales Agent", resp.Messages[3].Sender)
}

func TestRunFirstHandoffWins(t *testing.T) {
	agentX := &core.Agent{Name: "Agent X"}
	agentY := &core.Agent{Name: "Agent Y"}

	start := &core.Agent{Name: "Start", Tools: []core.Tool{
		tool.NewHandoff(agentX),
		tool.NewHandoff(agentY),
	}}

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{
			callTo("call_1", "transfer_to_agent_x", "{}"),
			callTo("call_2", "transfer_to_agent_y", "{}"),
		}},
		model.Turn{Content: "done"},
	)

	resp, err := New(m).Run(context.Background(), start, nil, WithMaxTurns(3))
	require.NoError(t, err)
	assert.Same(t, agentX, resp.Agent)
}

func TestRunContextVarsLastWriteWins(t *testing.T) {
	setVar := func(key, value string) core.Tool {
		return tool.New("set_"+key, "Set a variable", nil,
			func(context.Context, map[string]any, core.ContextVars) (any, error) {
				return core.Result{Value: "ok", ContextVars: core.ContextVars{"shared": value, key: value}}, nil
			})
	}

	agent := &core.Agent{Name: "Agent", Tools: []core.Tool{setVar("a", "first"), setVar("b", "second")}}
	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{
			callTo("call_1", "set_a", "{}"),
			callTo("call_2", "set_b", "{}"),
		}},
		model.Turn{Content: "done"},
	)

	resp, err := New(m).Run(context.Background(), agent, nil,
		WithContextVars(core.ContextVars{"shared": "seed", "untouched": "yes"}))
	require.NoError(t, err)

	assert.Equal(t, "second", resp.ContextVars["shared"])
	assert.Equal(t, "first", resp.ContextVars["a"])
	assert.Equal(t, "second", resp.ContextVars["b"])
	assert.Equal(t, "yes", resp.ContextVars["untouched"])
}

func TestRunInjectsContextVarsOnlyWhenRequested(t *testing.T) {
	var seen core.ContextVars
	greeter := tool.New("greet", "Greet the user by name", nil,
		func(_ context.Context, _ map[string]any, vars core.ContextVars) (any, error) {
			seen = vars
			return fmt.Sprintf("Hello, %s!", vars.GetString("user_name")), nil
		}, tool.WithContextVars())

	agent := &core.Agent{Name: "Agent", Tools: []core.Tool{greeter}}
	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "greet", "{}")}},
		model.Turn{Content: "done"},
	)

	resp, err := New(m).Run(context.Background(), agent, nil,
		WithContextVars(core.ContextVars{"user_name": "Ada"}))
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "Ada", seen.GetString("user_name"))
	assert.Equal(t, "Hello, Ada!", resp.Messages[1].Content)
}

func TestRunMaxTurnsBoundsCompletions(t *testing.T) {
	loop := tool.New("again", "Ask for another turn", nil,
		func(context.Context, map[string]any, core.ContextVars) (any, error) {
			return "again", nil
		})

	turns := make([]model.Turn, 20)
	for i := range turns {
		turns[i] = model.Turn{ToolCalls: []core.ToolCall{callTo(fmt.Sprintf("call_%d", i), "again", "{}")}}
	}
	m := model.NewScriptedModel(turns...)
	agent := &core.Agent{Name: "Looper", Tools: []core.Tool{loop}}

	resp, err := New(m).Run(context.Background(), agent, nil, WithMaxTurns(4))
	require.NoError(t, err)
	assert.Equal(t, 4, m.Calls())
	assert.NotNil(t, resp)
}

func TestRunWithoutToolExecutionStopsAfterFirstCompletion(t *testing.T) {
	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "echo", `{"text":"hi"}`)}},
	)
	agent := &core.Agent{Name: "Agent"}

	resp, err := New(m).Run(context.Background(), agent, nil, WithoutToolExecution())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Calls())
	require.Len(t, resp.Messages, 1)
	require.Len(t, resp.Messages[0].ToolCalls, 1)
}

func TestRunModelOverrideReachesBackend(t *testing.T) {
	m := model.NewScriptedModel(model.Turn{Content: "ok"})
	agent := &core.Agent{Name: "Agent", Model: "gpt-4o"}

	_, err := New(m).Run(context.Background(), agent, nil, WithModelOverride("gpt-4o-mini"))
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-4o-mini", reqs[0].Model)
}

func TestRunDoesNotMutateCallerState(t *testing.T) {
	echo := tool.New("echo", "Echo", nil,
		func(context.Context, map[string]any, core.ContextVars) (any, error) {
			return core.Result{Value: "ok", ContextVars: core.ContextVars{"touched": true}}, nil
		})

	m := model.NewScriptedModel(
		model.Turn{ToolCalls: []core.ToolCall{callTo("call_1", "echo", "{}")}},
		model.Turn{Content: "done"},
	)
	agent := &core.Agent{Name: "Agent", Tools: []core.Tool{echo}}

	seedMessages := []core.Message{userMessage("hello")}
	seedVars := core.ContextVars{"seed": "value"}

	_, err := New(m).Run(context.Background(), agent, seedMessages, WithContextVars(seedVars))
	require.NoError(t, err)

	require.Len(t, seedMessages, 1)
	assert.Equal(t, "hello", seedMessages[0].Content)
	assert.Equal(t, core.ContextVars{"seed": "value"}, seedVars)
}

func TestRunSystemMessageCarriesResolvedInstructions(t *testing.T) {
	m := model.NewScriptedModel(model.Turn{Content: "ok"})
	agent := &core.Agent{
		Name: "Agent",
		InstructionsFunc: func(vars core.ContextVars) string {
			return "Help " + vars.GetString("user_name") + "."
		},
	}

	_, err := New(m).Run(context.Background(), agent, nil,
		WithContextVars(core.ContextVars{"user_name": "Ada"}))
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	require.NotEmpty(t, reqs[0].Messages)
	assert.Equal(t, core.RoleSystem, reqs[0].Messages[0].Role)
	assert.Equal(t, "Help Ada.", reqs[0].Messages[0].Content)
}

func TestStripContextVarsParamRemovesReservedKey(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city":                map[string]any{"type": "string"},
			core.ContextVarsParam: map[string]any{"type": "object"},
		},
		"required": []string{"city", core.ContextVarsParam},
	}

	clean := stripContextVarsParam(schema)

	props := clean["properties"].(map[string]any)
	assert.NotContains(t, props, core.ContextVarsParam)
	assert.Contains(t, props, "city")
	assert.Equal(t, []string{"city"}, clean["required"])

	// original schema untouched
	assert.Contains(t, schema["properties"].(map[string]any), core.ContextVarsParam)
}
