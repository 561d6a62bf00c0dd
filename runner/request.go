package runner

import (
	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/model"
)

// buildRequest assembles the outbound completion request: the agent's
// resolved instructions prepended as a system message, the full history, and
// the agent's tool schemas. ParallelToolCalls is only forwarded when the
// agent actually has tools.
func (r *Runner) buildRequest(agent *core.Agent, history []core.Message, vars core.ContextVars, override string) model.Request {
	instructions := agent.ResolveInstructions(vars)

	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: instructions})
	messages = append(messages, history...)

	modelID := agent.Model
	if override != "" {
		modelID = override
	}

	req := model.Request{
		Model:      modelID,
		Messages:   messages,
		ToolChoice: agent.ToolChoice,
	}
	if len(agent.Tools) > 0 {
		req.Tools = toolDefinitions(agent.Tools)
		parallel := agent.ParallelToolCalls
		req.ParallelToolCalls = &parallel
	}
	return req
}

func toolDefinitions(tools []core.Tool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  stripContextVarsParam(t.Parameters()),
			},
		})
	}
	return defs
}

// stripContextVarsParam removes the reserved context-injection parameter
// from a schema's properties and required list so it never reaches the
// model. Tools built with the explicit capability flag never declare it, but
// hand-written schemas are sanitized defensively. The input schema is not
// mutated.
func stripContextVarsParam(schema map[string]any) map[string]any {
	props, _ := schema["properties"].(map[string]any)
	if props == nil {
		return schema
	}
	if _, reserved := props[core.ContextVarsParam]; !reserved {
		return schema
	}

	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	cleanProps := make(map[string]any, len(props))
	for k, v := range props {
		if k != core.ContextVarsParam {
			cleanProps[k] = v
		}
	}
	out["properties"] = cleanProps

	switch required := schema["required"].(type) {
	case []string:
		out["required"] = removeString(required, core.ContextVarsParam)
	case []any:
		var clean []any
		for _, v := range required {
			if s, ok := v.(string); ok && s == core.ContextVarsParam {
				continue
			}
			clean = append(clean, v)
		}
		out["required"] = clean
	}
	return out
}

func removeString(in []string, drop string) []string {
	var out []string
	for _, s := range in {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
