// Package model defines the seam between the turn orchestrator and language
// model backends. A backend exposes two paths: Complete returns one selected
// message, Stream returns a single-pass sequence of partial-message deltas
// that the orchestrator folds back together. Provider adapters live in the
// openai and anthropic subpackages; ScriptedModel is a deterministic backend
// for tests and examples.
package model
