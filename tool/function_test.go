package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/internal/util"
)

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
	sum := New("sum", "Add numbers", params, func(_ context.Context, args map[string]any, _ core.ContextVars) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	res, err := sum.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res)
	assert.False(t, sum.WantsContextVars())
}

func TestFunctionTool_ValidationFailure(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []string{"a"},
	}
	tl := New("strict", "Strict", params, func(_ context.Context, _ map[string]any, _ core.ContextVars) (any, error) {
		return "never", nil
	})

	_, err := tl.Call(context.Background(), map[string]any{}, nil)
	require.Error(t, err)
	var vErr *util.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "a", vErr.Field)
}

func TestFunctionTool_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	tl := New("fail", "Fails", nil, func(_ context.Context, _ map[string]any, _ core.ContextVars) (any, error) {
		return nil, boom
	})
	_, err := tl.Call(context.Background(), map[string]any{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestFunctionTool_ContextVarsFlag(t *testing.T) {
	var seen core.ContextVars
	tl := New("greet", "Greets", nil, func(_ context.Context, _ map[string]any, vars core.ContextVars) (any, error) {
		seen = vars
		return "hi " + vars.GetString("user_name"), nil
	}, WithContextVars())

	assert.True(t, tl.WantsContextVars())

	res, err := tl.Call(context.Background(), map[string]any{}, core.ContextVars{"user_name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "hi alice", res)
	assert.Equal(t, "alice", seen.GetString("user_name"))
}

type weatherArgs struct {
	City string `json:"city" jsonschema_description:"City to look up."`
	Days int    `json:"days,omitempty" jsonschema_description:"Forecast horizon in days."`
}

func TestNewFromStruct(t *testing.T) {
	tl := NewFromStruct[weatherArgs]("get_weather", "Look up the weather", func(_ context.Context, args map[string]any, _ core.ContextVars) (any, error) {
		return "sunny in " + args["city"].(string), nil
	})

	schema := tl.Parameters()
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")

	res, err := tl.Call(context.Background(), map[string]any{"city": "Berlin"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", res)
}

func TestNewFromStruct_RequiredHonored(t *testing.T) {
	tl := NewFromStruct[weatherArgs]("get_weather", "Look up the weather", func(_ context.Context, _ map[string]any, _ core.ContextVars) (any, error) {
		return "", nil
	})
	_, err := tl.Call(context.Background(), map[string]any{"days": float64(2)}, nil)
	assert.Error(t, err) // city is required
}
