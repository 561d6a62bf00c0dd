// Package session provides conversation state storage. A Store keeps the
// message history and context variables accumulated across runs of one
// conversation, so callers can feed a run's output back in as the next
// run's seed.
//
// Additional backends (Redis, Postgres, etc.) can be added in sub-packages
// without changing calling code; only the wiring layer decides which
// implementation to instantiate.
package session
