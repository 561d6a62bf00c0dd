package core

// ContextVars is the shared mutable state threaded through a run. It is
// invisible to the model's tool schemas but available to tools that declare
// the context capability flag.
//
// Tools must communicate mutations through Result.ContextVars; the mapping
// injected into a tool call is a live reference and is read-only by contract.
type ContextVars map[string]any

// Clone returns a copy so that caller-supplied initial variables are never
// mutated by the orchestration loop.
func (c ContextVars) Clone() ContextVars {
	out := make(ContextVars, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge folds delta into c, right-biased: keys in delta overwrite existing
// keys.
func (c ContextVars) Merge(delta ContextVars) {
	for k, v := range delta {
		c[k] = v
	}
}

// GetString reads a value as a string. Unknown keys and non-string values
// read as the empty string, which keeps instruction templates total.
func (c ContextVars) GetString(key string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
