package core

import "context"

// IndexCandidate is a raw nearest-neighbor hit returned by a VectorIndex
// before threshold filtering and ranking.
type IndexCandidate struct {
	DocID string
	Text  string
	Score float64
}

// VectorIndex is the external nearest-neighbor index consumed by the
// retrieval engine. Query returns ranked candidates for a query vector;
// Upsert is used only by the out-of-scope ingestion path.
type VectorIndex interface {
	Query(ctx context.Context, vector []float64, topK int) ([]IndexCandidate, error)
	Upsert(ctx context.Context, docID string, vector []float64, text string) error
}

// ResultSet holds the rows returned by a structured-query execution. Row
// values keep their driver types; aggregation for chart attachments happens
// in the structured-query agent.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// QueryExecutor is the black-box structured-query execution collaborator.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*ResultSet, error)
}

// ColumnInfo describes one column of a structured data source.
type ColumnInfo struct {
	Name string
	Type string
}

// TableInfo describes one table of a structured data source.
type TableInfo struct {
	Name    string
	Columns []ColumnInfo
}

// SchemaProvider is the data-dictionary collaborator used to ground
// natural-language to structured-query translation.
type SchemaProvider interface {
	Describe(ctx context.Context) ([]TableInfo, error)
}

// SessionStore owns the Conversation instances keyed by session ID. Get
// creates a session lazily; Reset clears its history without discarding the
// session itself.
type SessionStore interface {
	Get(sessionID string) (*Conversation, error)
	Reset(sessionID string) error
	History(sessionID string) ([]Turn, error)
}

// RouteAgent is the common contract shared by the four answer strategies.
// The resolved RouteDecision travels with the call so agents can embed it in
// the Response and the clarification agent can inspect the trigger. Answer
// must return a valid Response for every recoverable failure (timeouts,
// unreachable collaborators); the error return is reserved for context
// cancellation and programming errors.
type RouteAgent interface {
	Name() string
	Label() RouteLabel
	Answer(ctx context.Context, q Query, decision RouteDecision, conv *Conversation) (Response, error)
}
