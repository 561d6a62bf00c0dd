// Package troupe provides a high-level façade over the turn runner and its
// services (session storage, logging) for building multi-agent conversation
// loops. Most applications interact with this package by:
//  1. Creating a Client via New() with a model backend
//  2. Declaring agents, their instructions, tools and handoffs
//  3. Driving conversations with Run (blocking) or RunStream (incremental)
//
// The façade delegates orchestration to runner.Runner while keeping setup
// ergonomics concise. The defaults (in-memory sessions, no-op logger) are
// safe for local development and testing.
package troupe

import (
	"context"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/logging"
	"github.com/troupe-ai/troupe/model"
	"github.com/troupe-ai/troupe/runner"
	"github.com/troupe-ai/troupe/session"
)

// Re-exported domain types so simple programs only import this package.
type (
	// Agent is a declarative agent profile.
	Agent = core.Agent
	// Message is one conversation entry.
	Message = core.Message
	// Response is the outcome of a run.
	Response = core.Response
	// ContextVars is the shared state threaded through a run.
	ContextVars = core.ContextVars
	// Result is a tool's structured return value.
	Result = core.Result
	// Tool is the callable capability contract.
	Tool = core.Tool
	// Event is one item of a streaming run.
	Event = runner.Event
)

// Streaming event types, re-exported from the runner.
const (
	EventTurnStart = runner.EventTurnStart
	EventDelta     = runner.EventDelta
	EventTurnEnd   = runner.EventTurnEnd
	EventResponse  = runner.EventResponse
)

// Options configure a Client.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger logging.Logger
	// Sessions defaults to an in-memory store.
	Sessions session.Store
}

// Client aggregates the runner and conversation storage behind one entry
// point.
type Client struct {
	runner   *runner.Runner
	sessions session.Store
}

// New creates a Client driving the given model backend. Unset services fall
// back to in-memory defaults.
func New(m model.Model, optFns ...func(o *Options)) *Client {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Sessions: session.NewInMemoryStore(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(m, func(o *runner.Options) {
		o.Logger = opts.Logger
	})
	return &Client{runner: r, sessions: opts.Sessions}
}

// Sessions exposes the conversation store.
func (c *Client) Sessions() session.Store { return c.sessions }

// Run executes a blocking conversation run.
func (c *Client) Run(ctx context.Context, agent *Agent, messages []Message, optFns ...runner.RunOption) (*Response, error) {
	return c.runner.Run(ctx, agent, messages, optFns...)
}

// RunStream executes a streaming conversation run.
func (c *Client) RunStream(ctx context.Context, agent *Agent, messages []Message, optFns ...runner.RunOption) (<-chan Event, <-chan error) {
	return c.runner.RunStream(ctx, agent, messages, optFns...)
}

// RunSession executes one user turn inside a stored conversation: the stored
// history plus the new user message seed the run, and the run's output is
// persisted back before returning.
func (c *Client) RunSession(ctx context.Context, conversationID string, agent *Agent, userText string, optFns ...runner.RunOption) (*Response, error) {
	state, err := c.sessions.Get(conversationID)
	if err != nil {
		return nil, err
	}

	userMsg := Message{Role: core.RoleUser, Content: userText}
	seed := append(state.Messages, userMsg)

	opts := append([]runner.RunOption{runner.WithContextVars(state.ContextVars)}, optFns...)
	resp, err := c.runner.Run(ctx, agent, seed, opts...)
	if err != nil {
		return nil, err
	}

	appended := append([]Message{userMsg}, resp.Messages...)
	if err := c.sessions.Append(conversationID, appended, resp.ContextVars); err != nil {
		return nil, err
	}
	return resp, nil
}
