package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/querymesh/agent"
	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/intent"
	"github.com/hupe1980/querymesh/model"
	"github.com/hupe1980/querymesh/retrieval"
	"github.com/hupe1980/querymesh/session"
	"github.com/hupe1980/querymesh/structured"
)

type fixture struct {
	model *model.MockModel
	index *retrieval.InMemoryIndex
	orch  *Orchestrator
}

func newFixture(t *testing.T, optFns ...func(o *Options)) *fixture {
	t.Helper()

	m := model.NewMockModel("mock", "test")
	index := retrieval.NewInMemoryIndex()
	engine := retrieval.NewEngine(m, index)

	exec, err := structured.NewSQLiteExecutor(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = exec.Close() })

	_, err = exec.DB().Exec(`CREATE TABLE sales (region TEXT, total REAL)`)
	require.NoError(t, err)

	_, err = exec.DB().Exec(`INSERT INTO sales (region, total) VALUES ('north', 1200.0), ('south', 800.0)`)
	require.NoError(t, err)

	agents := []core.RouteAgent{
		agent.NewRetrievalAgent(engine, m, func(o *agent.RetrievalAgentOptions) {
			o.SimilarityThreshold = 0.1
		}),
		agent.NewStructuredAgent(m, exec, exec),
		agent.NewGeneralAgent(m),
		agent.NewClarificationAgent(),
	}

	// A low preview threshold keeps the hashed test embeddings above it.
	withDefaults := append([]func(o *Options){func(o *Options) {
		o.SimilarityThreshold = 0.1
	}}, optFns...)

	orch, err := New(intent.NewClassifier(m), engine, agents, withDefaults...)
	require.NoError(t, err)

	return &fixture{model: m, index: index, orch: orch}
}

func (f *fixture) seedDoc(t *testing.T, docID, text string) {
	t.Helper()

	vec, err := f.model.Embed(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, f.index.Upsert(context.Background(), docID, vec, text))
}

func TestSubmitQueryRecordsExactlyOneTurn(t *testing.T) {
	f := newFixture(t)

	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1", "What is business intelligence and how does it work?")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "What is business intelligence and how does it work?", history[0].Query.Text)
}

func TestSubmitQueryInvalidQueryRecordsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.SubmitQuery(context.Background(), "sess-1", "   ")
	assert.ErrorIs(t, err, core.ErrInvalidQuery)

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScenarioTotalSalesRoutesStructured(t *testing.T) {
	f := newFixture(t)

	f.model.AddResponseContains("Schema:", "SELECT region, SUM(total) AS total FROM sales GROUP BY region")
	f.model.AddResponseContains("Result summary:", "North leads with 1200 in sales.")

	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1", "What were total sales last month?")
	require.NoError(t, err)

	assert.Equal(t, core.RouteStructuredQuery, resp.Decision.Label)
	assert.GreaterOrEqual(t, resp.Decision.Confidence, 0.5)

	var foundTable bool

	for _, att := range resp.Attachments {
		if att.Kind == core.AttachmentKindTable {
			foundTable = true

			assert.Equal(t, []string{"region", "total"}, att.Payload["columns"])
		}
	}

	assert.True(t, foundTable, "expected aggregated row data attachment")

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.RouteStructuredQuery, history[0].Route)
}

func TestScenarioShortQueryForcesClarification(t *testing.T) {
	f := newFixture(t)

	// The classifier is confident the query is general knowledge; the policy
	// must still trip on the short first-turn query.
	f.model.AddResponseContains(`Current user query: "tell me more"`,
		`{"intent": "general_knowledge", "confidence": 0.9, "reasoning": "chit chat"}`)

	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1", "tell me more")
	require.NoError(t, err)

	assert.Equal(t, core.RouteClarification, resp.Decision.Label)
	assert.Contains(t, resp.Text, "?")
	assert.NotEmpty(t, resp.Decision.Trigger)
}

func TestScenarioEmptyRetrievalForcesClarification(t *testing.T) {
	f := newFixture(t)

	// Decisive document vocabulary, but the index holds nothing relevant.
	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1",
		"What does the quarterly report document say about our findings?")
	require.NoError(t, err)

	assert.Equal(t, core.RouteClarification, resp.Decision.Label)
	assert.Contains(t, resp.Text, "didn't find anything")
}

func TestRetrievalUnavailableForcesClarification(t *testing.T) {
	f := newFixture(t)

	f.seedDoc(t, "handbook", "vacation policy grants twenty days per year")
	f.model.FailEmbed(errors.New("index down"))

	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1",
		"What does the handbook document say about vacation policy?")
	require.NoError(t, err)

	assert.Equal(t, core.RouteClarification, resp.Decision.Label)
}

func TestDocumentRouteAnswersWithEvidence(t *testing.T) {
	f := newFixture(t)

	f.seedDoc(t, "handbook", "the vacation policy document grants twenty days per year")
	f.model.AddResponseContains("Document excerpts:", "Twenty vacation days per year.")

	resp, err := f.orch.SubmitQuery(context.Background(), "sess-1",
		"What does the vacation policy document say according to the handbook?")
	require.NoError(t, err)

	assert.Equal(t, core.RouteDocumentRetrieval, resp.Decision.Label)
	assert.Equal(t, "Twenty vacation days per year.", resp.Text)

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].Evidence)
	assert.Equal(t, "handbook", history[0].Evidence[0].DocID)
}

func TestResetSessionEmptiesHistory(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.SubmitQuery(context.Background(), "sess-1", "What is business intelligence and how does it work?")
	require.NoError(t, err)

	require.NoError(t, f.orch.ResetSession("sess-1"))

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationRespectsMaxTurns(t *testing.T) {
	store := session.NewInMemoryStore(func(o *session.InMemoryStoreOptions) {
		o.MaxTurns = 2
		o.TokenBudget = 1 << 20
	})

	f := newFixture(t, func(o *Options) {
		o.SessionStore = store
	})

	queries := []string{
		"What is business intelligence and how does it work?",
		"Explain the difference between KPIs and metrics please",
		"What are best practices for data visualization today?",
	}

	for _, q := range queries {
		_, err := f.orch.SubmitQuery(context.Background(), "sess-1", q)
		require.NoError(t, err)
	}

	history, err := f.orch.GetHistory("sess-1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Oldest turn evicted first.
	assert.Equal(t, queries[1], history[0].Query.Text)
	assert.Equal(t, queries[2], history[1].Query.Text)
}

func TestNewRequiresFullRouteCoverage(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	engine := retrieval.NewEngine(m, retrieval.NewInMemoryIndex())

	_, err := New(intent.NewClassifier(m), engine, []core.RouteAgent{
		agent.NewGeneralAgent(m),
		agent.NewClarificationAgent(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no agent registered")
}
