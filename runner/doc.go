// Package runner contains the turn orchestration engine: the loop that
// alternates model completions with tool execution, maintains conversation
// history and shared context variables, and switches the active agent when a
// tool hands the conversation off.
//
// Control flow is single-threaded and synchronous. Tools run sequentially in
// the order the model requested them; streaming is a cooperative single-pass
// producer that suspends on every emitted event until the consumer reads it.
// Nothing here retries: backend and tool errors propagate to the caller.
package runner
