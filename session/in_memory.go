package session

import (
	"sync"

	"github.com/troupe-ai/troupe/core"
)

// State is one conversation's persisted slice: the accumulated history and
// the latest context variables.
type State struct {
	ID          string
	Messages    []core.Message
	ContextVars core.ContextVars
}

// Clone returns a deep copy so callers can mutate freely.
func (s *State) Clone() *State {
	return &State{
		ID:          s.ID,
		Messages:    core.CloneMessages(s.Messages),
		ContextVars: s.ContextVars.Clone(),
	}
}

// Store persists conversation state between runs.
type Store interface {
	// Get returns the state for the given conversation, creating an empty
	// one if it does not exist yet.
	Get(conversationID string) (*State, error)
	// Append records a finished run: messages are appended to the history
	// and vars replace the stored context variables.
	Append(conversationID string, messages []core.Message, vars core.ContextVars) error
	// Reset discards the state for the given conversation.
	Reset(conversationID string) error
}

// InMemoryStore is a volatile Store keeping conversations in a process local
// map. It is safe for concurrent access and suited for tests, demos and the
// interactive loop. Every returned state is cloned to prevent external
// mutation of internal data.
type InMemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*State
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*State)}
}

// Get implements Store.
func (s *InMemoryStore) Get(conversationID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(conversationID).Clone(), nil
}

// Append implements Store.
func (s *InMemoryStore) Append(conversationID string, messages []core.Message, vars core.ContextVars) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getOrCreateLocked(conversationID)
	st.Messages = append(st.Messages, core.CloneMessages(messages)...)
	st.ContextVars = vars.Clone()
	return nil
}

// Reset implements Store.
func (s *InMemoryStore) Reset(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}

// getOrCreateLocked allocates and stores a new state if needed; caller must
// hold the lock.
func (s *InMemoryStore) getOrCreateLocked(conversationID string) *State {
	if st, ok := s.conversations[conversationID]; ok {
		return st
	}
	st := &State{ID: conversationID, ContextVars: core.ContextVars{}}
	s.conversations[conversationID] = st
	return st
}
