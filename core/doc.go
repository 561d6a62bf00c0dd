// Package core defines the shared data model of the troupe framework:
// messages, tool calls, context variables, agents, tool results and run
// responses. Every other package depends on core; core depends on nothing
// but the standard library.
//
// An Agent is an immutable configuration value. Switching agents during a
// run means replacing the active *Agent reference, never mutating one agent
// into another.
package core
