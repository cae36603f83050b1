package testutil

import (
	"github.com/hupe1980/querymesh/core"
)

// TurnBuilder helps construct conversation turns with fluent chaining for tests.
// Example:
//
//	turn := NewTurnBuilder("sess-1", "total sales?").Route(core.RouteStructuredQuery).Answer("42").Build()
type TurnBuilder struct {
	sessionID string
	text      string
	turnIndex int
	label     core.RouteLabel
	conf      float64
	answer    string
	evidence  []core.Evidence
}

// NewTurnBuilder creates a new builder for a turn in the given session.
// Use chainable methods (Index, Route, Answer, Evidence) then call Build.
func NewTurnBuilder(sessionID, text string) *TurnBuilder {
	return &TurnBuilder{
		sessionID: sessionID,
		text:      text,
		label:     core.RouteGeneralKnowledge,
		conf:      0.9,
		answer:    "ok",
	}
}

// Index sets the turn index within the conversation (chainable).
func (b *TurnBuilder) Index(i int) *TurnBuilder {
	b.turnIndex = i
	return b
}

// Route sets the route label the turn was handled on (chainable).
func (b *TurnBuilder) Route(label core.RouteLabel) *TurnBuilder {
	b.label = label
	return b
}

// Confidence sets the routing confidence recorded on the turn (chainable).
func (b *TurnBuilder) Confidence(c float64) *TurnBuilder {
	b.conf = c
	return b
}

// Answer sets the response text of the turn (chainable).
func (b *TurnBuilder) Answer(text string) *TurnBuilder {
	b.answer = text
	return b
}

// Evidence appends evidence references to the turn (chainable).
func (b *TurnBuilder) Evidence(refs ...core.Evidence) *TurnBuilder {
	b.evidence = append(b.evidence, refs...)
	return b
}

// Build returns a core.Turn with the configured query, decision, and response.
func (b *TurnBuilder) Build() core.Turn {
	q, err := core.NewQuery(b.sessionID, b.text, b.turnIndex)
	if err != nil {
		panic("testutil: invalid query text: " + err.Error())
	}

	resp := core.Response{
		Text: b.answer,
		Decision: core.RouteDecision{
			Label:      b.label,
			Confidence: b.conf,
			Reasoning:  "test fixture",
		},
	}

	return core.NewTurn(q, resp, b.evidence)
}

// NewConversationWith builds a conversation pre-populated with the given turns.
// The conversation is created with generous limits so fixtures never evict.
func NewConversationWith(sessionID string, turns ...core.Turn) *core.Conversation {
	conv := core.NewConversation(sessionID, 100, 1<<20)
	for _, turn := range turns {
		conv.Append(turn)
	}

	return conv
}
