package core

import (
	"encoding/json"
	"fmt"
)

// Result is the canonical outcome of one tool invocation: a string value
// handed back to the model, an optional context-variable delta, and an
// optional next agent for handoff.
type Result struct {
	Value       string
	ContextVars ContextVars
	Agent       *Agent
}

// Response is the externally observable outcome of a run: the history
// appended during the run (excluding the caller's seed messages), the final
// active agent and the final context variables.
type Response struct {
	Messages    []Message
	Agent       *Agent
	ContextVars ContextVars
}

// ResultError reports a tool return value that could not be normalized.
type ResultError struct {
	Value any
	Err   error
}

func (e *ResultError) Error() string {
	return fmt.Sprintf(
		"failed to cast tool response %v to string: tools must return a string, Result or *Agent: %v",
		e.Value, e.Err,
	)
}

func (e *ResultError) Unwrap() error { return e.Err }

// NormalizeResult converts a tool's raw return value into a canonical Result.
//
//	Result / *Result  -> passed through unchanged
//	*Agent            -> handoff; Value is a small JSON object naming the agent
//	string, Stringer  -> the string value
//	nil               -> empty Result
//	anything else     -> JSON encoding; a *ResultError if encoding fails
func NormalizeResult(raw any) (Result, error) {
	switch v := raw.(type) {
	case Result:
		return v, nil
	case *Result:
		return *v, nil
	case *Agent:
		b, err := json.Marshal(map[string]string{"assistant": v.Name})
		if err != nil {
			return Result{}, &ResultError{Value: raw, Err: err}
		}
		return Result{Value: string(b), Agent: v}, nil
	case string:
		return Result{Value: v}, nil
	case fmt.Stringer:
		return Result{Value: v.String()}, nil
	case nil:
		return Result{}, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Result{}, &ResultError{Value: raw, Err: err}
		}
		return Result{Value: string(b)}, nil
	}
}
