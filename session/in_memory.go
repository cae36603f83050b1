package session

import (
	"sync"

	"github.com/hupe1980/querymesh/core"
)

// Compile-time check to ensure InMemoryStore satisfies the core.SessionStore interface.
var _ core.SessionStore = (*InMemoryStore)(nil)

// InMemoryStoreOptions configures the conversations an InMemoryStore creates.
type InMemoryStoreOptions struct {
	// MaxTurns bounds each conversation's turn count (FIFO eviction).
	MaxTurns int

	// TokenBudget bounds each conversation's approximate token footprint.
	TokenBudget int
}

// InMemoryStore is a volatile SessionStore implementation keeping
// conversations in a process local map. It is safe for concurrent access and
// best suited for tests or single-process deployments. Conversations are
// created lazily on first Get and carry the store's configured bounds.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
	opts          InMemoryStoreOptions
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{
		MaxTurns:    20,
		TokenBudget: 8000,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{
		conversations: make(map[string]*core.Conversation),
		opts:          opts,
	}
}

// Get returns the conversation for sessionID, creating it if absent. The
// returned pointer is the live conversation; Conversation itself is
// goroutine-safe.
func (s *InMemoryStore) Get(sessionID string) (*core.Conversation, error) {
	s.mu.RLock()
	conv, ok := s.conversations[sessionID]
	s.mu.RUnlock()

	if ok {
		return conv, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock.
	if conv, ok := s.conversations[sessionID]; ok {
		return conv, nil
	}

	conv = core.NewConversation(sessionID, s.opts.MaxTurns, s.opts.TokenBudget)
	s.conversations[sessionID] = conv

	return conv, nil
}

// Reset clears the conversation for sessionID. Resetting an unknown session
// returns core.ErrSessionNotFound.
func (s *InMemoryStore) Reset(sessionID string) error {
	s.mu.RLock()
	conv, ok := s.conversations[sessionID]
	s.mu.RUnlock()

	if !ok {
		return core.ErrSessionNotFound
	}

	conv.Clear()

	return nil
}

// History returns a snapshot of the turns recorded for sessionID. An unknown
// session yields an empty history, mirroring Get's lazy-create semantics.
func (s *InMemoryStore) History(sessionID string) ([]core.Turn, error) {
	s.mu.RLock()
	conv, ok := s.conversations[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	return conv.Turns(), nil
}

// Len reports how many sessions the store currently holds.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations)
}
