// Package querymesh provides a high-level façade over the routing core
// (classifier, clarification policy, retrieval engine, route agents, and
// conversation storage) enabling rapid construction of query-routing
// assistants. Most applications interact with this package by:
//  1. Creating a QueryMesh via New() with a model and the domain backends
//     (vector index, query executor, schema provider)
//  2. Submitting queries per session (SubmitQuery)
//  3. Reading or resetting per-session history (GetHistory, ResetSession)
//
// The façade delegates sequencing to orchestrator.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable store
// implementations and a structured logger.
package querymesh

import (
	"context"
	"fmt"

	"github.com/hupe1980/querymesh/agent"
	"github.com/hupe1980/querymesh/config"
	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/intent"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
	"github.com/hupe1980/querymesh/orchestrator"
	"github.com/hupe1980/querymesh/retrieval"
	"github.com/hupe1980/querymesh/session"
)

// Options configures the QueryMesh instance.
type Options struct {
	// ConfidenceFloor downgrades classifications below it to clarification.
	ConfidenceFloor float64

	// SimilarityThreshold filters retrieved passages.
	SimilarityThreshold float64

	// TopK is the number of passages requested per retrieval.
	TopK int

	// MinQueryTokens is the shortest first-turn query answered without
	// clarification.
	MinQueryTokens int

	// MaxTurns bounds each conversation's turn count (FIFO eviction).
	MaxTurns int

	// TokenBudget bounds each conversation's approximate token footprint.
	TokenBudget int

	// TraceFilter strips internal reasoning spans from generated text.
	TraceFilter model.TraceFilter

	// VectorIndex backs document retrieval (defaults to an empty in-memory
	// index).
	VectorIndex core.VectorIndex

	// QueryExecutor runs generated SELECT statements. Required for useful
	// structured-query answers; without one the structured agent degrades.
	QueryExecutor core.QueryExecutor

	// SchemaProvider grounds SQL generation.
	SchemaProvider core.SchemaProvider

	// SessionStore manages conversation persistence (defaults to in-memory).
	SessionStore core.SessionStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// QueryMesh is the high-level façade aggregating the routing pipeline and its
// services.
type QueryMesh struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a QueryMesh around the given model with optional overrides.
// Any unset service is initialized with an in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) (*QueryMesh, error) {
	opts := Options{
		ConfidenceFloor:     0.5,
		SimilarityThreshold: 0.7,
		TopK:                5,
		MinQueryTokens:      4,
		MaxTurns:            20,
		TokenBudget:         8000,
		TraceFilter:         model.DefaultTraceFilter(),
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.VectorIndex == nil {
		opts.VectorIndex = retrieval.NewInMemoryIndex()
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore(func(o *session.InMemoryStoreOptions) {
			o.MaxTurns = opts.MaxTurns
			o.TokenBudget = opts.TokenBudget
		})
	}

	engine := retrieval.NewEngine(m, opts.VectorIndex, func(o *retrieval.Options) {
		o.Logger = opts.Logger
	})

	classifier := intent.NewClassifier(m, func(o *intent.Options) {
		o.ConfidenceFloor = opts.ConfidenceFloor
		o.Logger = opts.Logger
	})

	agents := []core.RouteAgent{
		agent.NewRetrievalAgent(engine, m, func(o *agent.RetrievalAgentOptions) {
			o.TopK = opts.TopK
			o.SimilarityThreshold = opts.SimilarityThreshold
			o.TraceFilter = opts.TraceFilter
			o.Logger = opts.Logger
		}),
		agent.NewStructuredAgent(m, opts.QueryExecutor, opts.SchemaProvider, func(o *agent.StructuredAgentOptions) {
			o.TraceFilter = opts.TraceFilter
			o.Logger = opts.Logger
		}),
		agent.NewGeneralAgent(m, func(o *agent.GeneralAgentOptions) {
			o.TraceFilter = opts.TraceFilter
			o.Logger = opts.Logger
		}),
		agent.NewClarificationAgent(func(o *agent.ClarificationAgentOptions) {
			o.Logger = opts.Logger
		}),
	}

	orch, err := orchestrator.New(classifier, engine, agents, func(o *orchestrator.Options) {
		o.ConfidenceFloor = opts.ConfidenceFloor
		o.SimilarityThreshold = opts.SimilarityThreshold
		o.TopK = opts.TopK
		o.MinQueryTokens = opts.MinQueryTokens
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &QueryMesh{opts: opts, orch: orch}, nil
}

// NewFromConfig creates a QueryMesh from a loaded configuration, applying any
// further option overrides on top of the configured values. The configuration
// is validated before use; a nil cfg falls back to the defaults.
func NewFromConfig(m model.Model, cfg *config.Config, optFns ...func(o *Options)) (*QueryMesh, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fromCfg := func(o *Options) {
		o.ConfidenceFloor = cfg.Routing.ConfidenceFloor
		o.SimilarityThreshold = cfg.Routing.SimilarityThreshold
		o.TopK = cfg.Routing.TopK
		o.MinQueryTokens = cfg.Routing.MinQueryTokens
		o.MaxTurns = cfg.Conversation.MaxTurns
		o.TokenBudget = cfg.Conversation.TokenBudget
		o.TraceFilter = model.NewTraceFilter(cfg.Model.TraceMarkers.Open, cfg.Model.TraceMarkers.Close)
	}

	return New(m, append([]func(o *Options){fromCfg}, optFns...)...)
}

// SubmitQuery resolves one query through the routing state machine and
// returns the Response. Empty input fails with core.ErrInvalidQuery.
func (q *QueryMesh) SubmitQuery(ctx context.Context, sessionID, text string) (core.Response, error) {
	return q.orch.SubmitQuery(ctx, sessionID, text)
}

// ResetSession clears the conversation for sessionID.
func (q *QueryMesh) ResetSession(sessionID string) error {
	return q.orch.ResetSession(sessionID)
}

// GetHistory returns the ordered turns recorded for sessionID.
func (q *QueryMesh) GetHistory(sessionID string) ([]core.Turn, error) {
	return q.orch.GetHistory(sessionID)
}
