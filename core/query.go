package core

import (
	"strings"
	"time"

	"github.com/hupe1980/querymesh/internal/util"
)

// Query is a single user question entering the orchestrator. Immutable once
// created; TurnIndex increases monotonically within a session.
type Query struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	TurnIndex int    `json:"turn_index"`
}

// NewQuery validates and constructs a Query. Empty or whitespace-only text is
// rejected with ErrInvalidQuery before it can enter the state machine; the
// stored text is trimmed.
func NewQuery(sessionID, text string, turnIndex int) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, ErrInvalidQuery
	}
	return Query{Text: trimmed, SessionID: sessionID, TurnIndex: turnIndex}, nil
}

// Tokens returns the whitespace-separated tokens of the query text. Used by
// the clarification policy's short-query trigger.
func (q Query) Tokens() []string { return strings.Fields(q.Text) }

// Evidence references a retrieved document used to ground a response.
type Evidence struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Attachment is an opaque structured payload carried alongside a response
// (tabular result summaries, chart data). The core does not interpret the
// payload beyond its kind, with one exception: AttachmentKindEvidence marks
// the retrieval evidence refs the orchestrator copies onto the recorded turn.
type Attachment struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// Attachment kinds produced by the route agents.
const (
	AttachmentKindEvidence = "evidence"
	AttachmentKindTable    = "table"
	AttachmentKindChart    = "chart"
)

// NewEvidenceAttachment wraps retrieval evidence refs as an attachment.
func NewEvidenceAttachment(refs []Evidence) Attachment {
	return Attachment{Kind: AttachmentKindEvidence, Payload: map[string]any{"refs": refs}}
}

// EvidenceRefs extracts the evidence refs from a response's attachments, or
// nil when the response carries none.
func (r Response) EvidenceRefs() []Evidence {
	for _, a := range r.Attachments {
		if a.Kind != AttachmentKindEvidence {
			continue
		}
		if refs, ok := a.Payload["refs"].([]Evidence); ok {
			return refs
		}
	}
	return nil
}

// Response is the final product of one orchestration call: the answer text,
// the route decision that produced it and zero or more attachments. Degraded
// outcomes (timeouts, failed query execution) are still valid Responses so
// turn recording stays uniform.
type Response struct {
	Text        string        `json:"text"`
	Decision    RouteDecision `json:"decision"`
	Attachments []Attachment  `json:"attachments,omitempty"`
}

// Turn is one completed query/response exchange. Immutable once appended to a
// Conversation.
type Turn struct {
	ID        string     `json:"id"`
	Query     Query      `json:"query"`
	Route     RouteLabel `json:"route"`
	Response  Response   `json:"response"`
	Evidence  []Evidence `json:"evidence,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewTurn assembles a Turn from an answered query, assigning a unique ID and
// stamping the current UTC time. Evidence is copied from the response's
// retrieval attachments by the orchestrator before appending.
func NewTurn(q Query, resp Response, evidence []Evidence) Turn {
	return Turn{
		ID:        util.NewID(),
		Query:     q,
		Route:     resp.Decision.Label,
		Response:  resp,
		Evidence:  evidence,
		Timestamp: time.Now().UTC(),
	}
}

// RetrievedPassage is a scored text span returned by the retrieval engine.
// Produced fresh per query; never persisted by the core.
type RetrievedPassage struct {
	DocID string  `json:"doc_id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
