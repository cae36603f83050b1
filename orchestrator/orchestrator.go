package orchestrator

import (
	"context"
	"fmt"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/intent"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/policy"
	"github.com/hupe1980/querymesh/retrieval"
	"github.com/hupe1980/querymesh/session"
)

// Options configures an Orchestrator instance using the functional options
// pattern. All services have in-memory defaults suitable for development and
// testing; production deployments typically provide their own session store
// and logger.
type Options struct {
	// ConfidenceFloor downgrades classifications below it to clarification.
	ConfidenceFloor float64

	// SimilarityThreshold filters retrieval preview passages.
	SimilarityThreshold float64

	// TopK is the number of passages requested for the retrieval preview.
	TopK int

	// MinQueryTokens is the shortest first-turn query answered without
	// clarification.
	MinQueryTokens int

	// SessionStore manages conversation persistence. Defaults to an
	// in-memory implementation.
	SessionStore core.SessionStore

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator drives the routing state machine for each submitted query:
//
//	Received → Classified → (ClarificationNeeded | Routed) → Answered → Recorded
//
// Exactly one route agent executes per query. Every failure path short of an
// invalid query resolves to a valid Response, so an accepted query always
// reaches Recorded and appends exactly one Turn.
type Orchestrator struct {
	classifier *intent.Classifier
	engine     *retrieval.Engine
	clarify    *policy.Policy
	agents     map[core.RouteLabel]core.RouteAgent
	sessions   core.SessionStore
	logger     logging.Logger
	opts       Options
}

// New wires a classifier, a retrieval engine (used for the document-route
// preview), and the route agents into an orchestrator. Every valid route
// label must be covered by exactly one agent; a missing or duplicate label
// is a construction error.
func New(classifier *intent.Classifier, engine *retrieval.Engine, agents []core.RouteAgent, optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := Options{
		ConfidenceFloor:     0.5,
		SimilarityThreshold: 0.7,
		TopK:                5,
		MinQueryTokens:      4,
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	registry := make(map[core.RouteLabel]core.RouteAgent, len(agents))

	for _, a := range agents {
		if !a.Label().Valid() {
			return nil, fmt.Errorf("agent %q handles unknown route %q", a.Name(), a.Label())
		}

		if _, ok := registry[a.Label()]; ok {
			return nil, fmt.Errorf("duplicate agent for route %q", a.Label())
		}

		registry[a.Label()] = a
	}

	for _, label := range []core.RouteLabel{
		core.RouteDocumentRetrieval,
		core.RouteStructuredQuery,
		core.RouteGeneralKnowledge,
		core.RouteClarification,
	} {
		if _, ok := registry[label]; !ok {
			return nil, fmt.Errorf("no agent registered for route %q", label)
		}
	}

	return &Orchestrator{
		classifier: classifier,
		engine:     engine,
		clarify:    policy.NewPolicy(opts.ConfidenceFloor, opts.SimilarityThreshold, opts.MinQueryTokens),
		agents:     registry,
		sessions:   opts.SessionStore,
		logger:     opts.Logger,
		opts:       opts,
	}, nil
}

// SubmitQuery resolves one query through the full state machine and returns
// the Response. Empty or whitespace-only text fails with core.ErrInvalidQuery
// before any state is touched; no turn is recorded in that case.
func (o *Orchestrator) SubmitQuery(ctx context.Context, sessionID, text string) (core.Response, error) {
	conv, err := o.sessions.Get(sessionID)
	if err != nil {
		return core.Response{}, fmt.Errorf("load session: %w", err)
	}

	q, err := core.NewQuery(sessionID, text, conv.NextTurnIndex())
	if err != nil {
		return core.Response{}, err
	}

	state := stateReceived
	o.logState(sessionID, state)

	decision := o.classifier.Classify(ctx, q, conv.Turns())
	state = stateClassified
	o.logState(sessionID, state)

	preview := o.previewRetrieval(ctx, q, decision)

	needed, reason := o.clarify.Evaluate(decision, preview, q, conv.Len())
	if needed {
		decision.Label = core.RouteClarification
		decision.Trigger = string(reason)
		state = stateClarificationNeeded
	} else {
		state = stateRouted
	}

	o.logState(sessionID, state)
	o.logger.Info("route resolved",
		"session_id", sessionID,
		"route", string(decision.Label),
		"confidence", decision.Confidence,
		"clarification", needed,
		"trigger", decision.Trigger,
	)

	resp := o.answer(ctx, q, decision, conv)
	state = stateAnswered
	o.logState(sessionID, state)

	conv.Append(core.NewTurn(q, resp, resp.EvidenceRefs()))
	state = stateRecorded
	o.logState(sessionID, state)

	return resp, nil
}

// ResetSession clears the conversation for sessionID.
func (o *Orchestrator) ResetSession(sessionID string) error {
	return o.sessions.Reset(sessionID)
}

// GetHistory returns the ordered turns recorded for sessionID.
func (o *Orchestrator) GetHistory(sessionID string) ([]core.Turn, error) {
	return o.sessions.History(sessionID)
}

// previewRetrieval runs the similarity search the clarification policy needs
// to judge a document route. Retrieval failure is treated as an empty
// preview, which the policy converts into a clarification turn; it is never
// fatal here.
func (o *Orchestrator) previewRetrieval(ctx context.Context, q core.Query, decision core.RouteDecision) []core.RetrievedPassage {
	if decision.Label != core.RouteDocumentRetrieval || o.engine == nil {
		return nil
	}

	preview, err := o.engine.Search(ctx, q, o.opts.TopK, o.opts.SimilarityThreshold)
	if err != nil {
		o.logger.Warn("retrieval preview failed", "session_id", q.SessionID, "error", err)
		return nil
	}

	return preview
}

// answer dispatches to the single agent matching the resolved label. An
// agent error still yields a valid degraded Response so the turn reaches
// Recorded.
func (o *Orchestrator) answer(ctx context.Context, q core.Query, decision core.RouteDecision, conv *core.Conversation) core.Response {
	a := o.agents[decision.Label]

	resp, err := a.Answer(ctx, q, decision, conv)
	if err != nil {
		o.logger.Error("agent failed", "agent", a.Name(), "session_id", q.SessionID, "error", err)

		return core.Response{
			Text:     "Something went wrong while answering your question. Please try again.",
			Decision: decision,
		}
	}

	return resp
}

func (o *Orchestrator) logState(sessionID string, s turnState) {
	o.logger.Debug("state transition", "session_id", sessionID, "state", s.String())
}
