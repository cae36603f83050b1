package core

import (
	"sync"
	"time"
)

// approximate characters per token used for the conversation token budget.
// The bound is a safety valve, not an exact accounting.
const charsPerToken = 4

// Conversation holds the ordered dialogue history for one session. It is
// bounded: once the configured maximum turn count or approximate token budget
// is exceeded, the oldest turns are evicted first (FIFO).
//
// Contract:
//   - Insertion order is semantic; it is the dialogue history
//   - Only the orchestrator's turn-append step mutates a Conversation; every
//     other component receives read-only snapshots
//   - Read accessors return defensive copies to avoid external mutation
type Conversation struct {
	SessionID string
	Created   time.Time

	mu          sync.RWMutex
	turns       []Turn
	maxTurns    int
	tokenBudget int
	routeCounts map[RouteLabel]int
	updated     time.Time
}

// NewConversation creates an empty conversation for the session. maxTurns
// must be positive; tokenBudget <= 0 disables the token bound.
func NewConversation(sessionID string, maxTurns, tokenBudget int) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		SessionID:   sessionID,
		Created:     now,
		updated:     now,
		maxTurns:    maxTurns,
		tokenBudget: tokenBudget,
		routeCounts: make(map[RouteLabel]int),
	}
}

// Append adds a completed turn, evicting the oldest turns while either bound
// is exceeded.
func (c *Conversation) Append(t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, t)
	c.routeCounts[t.Route]++
	for len(c.turns) > c.maxTurns {
		c.turns = c.turns[1:]
	}
	if c.tokenBudget > 0 {
		for len(c.turns) > 1 && c.approxTokensLocked() > c.tokenBudget {
			c.turns = c.turns[1:]
		}
	}
	c.updated = time.Now().UTC()
}

func (c *Conversation) approxTokensLocked() int {
	chars := 0
	for _, t := range c.turns {
		chars += len(t.Query.Text) + len(t.Response.Text)
	}
	return chars / charsPerToken
}

// Turns returns a copy of the full turn history.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Recent returns a copy of the most recent n turns (all turns if fewer).
func (c *Conversation) Recent(n int) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// NextTurnIndex returns the turn index to assign to the next query. Indexes
// keep increasing across FIFO eviction.
func (c *Conversation) NextTurnIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return 0
	}
	return c.turns[len(c.turns)-1].Query.TurnIndex + 1
}

// Clear removes all turns and statistics. Used by the session reset
// operation.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.routeCounts = make(map[RouteLabel]int)
	c.updated = time.Now().UTC()
}

// Stats summarizes a conversation: total turns recorded in the current
// window and how many resolved to each route.
type Stats struct {
	Turns       int                `json:"turns"`
	RouteCounts map[RouteLabel]int `json:"route_counts"`
	Updated     time.Time          `json:"updated"`
}

// Stats returns a snapshot of the conversation statistics. RouteCounts tracks
// every appended turn, including ones later evicted by the FIFO policy.
func (c *Conversation) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts := make(map[RouteLabel]int, len(c.routeCounts))
	for k, v := range c.routeCounts {
		counts[k] = v
	}
	return Stats{Turns: len(c.turns), RouteCounts: counts, Updated: c.updated}
}
