package policy

import (
	"testing"

	"github.com/hupe1980/querymesh/core"
	"github.com/stretchr/testify/assert"
)

func decision(label core.RouteLabel, conf float64) core.RouteDecision {
	return core.RouteDecision{Label: label, Confidence: conf}
}

func query(text string) core.Query {
	return core.Query{Text: text, SessionID: "s1"}
}

func TestPolicy_LowConfidence(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 3)
	need, reason := p.Evaluate(decision(core.RouteGeneralKnowledge, 0.3), nil, query("what is business intelligence"), 0)
	assert.True(t, need)
	assert.Equal(t, ReasonLowConfidence, reason)
}

func TestPolicy_ShortQueryWithoutHistory(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 3)

	need, reason := p.Evaluate(decision(core.RouteGeneralKnowledge, 0.9), nil, query("tell me more"), 0)
	assert.False(t, need, "three tokens meets the minimum")
	assert.Equal(t, ReasonNone, reason)

	need, reason = p.Evaluate(decision(core.RouteGeneralKnowledge, 0.9), nil, query("more"), 0)
	assert.True(t, need)
	assert.Equal(t, ReasonShortQuery, reason)

	// history context resolves the same short query
	need, _ = p.Evaluate(decision(core.RouteGeneralKnowledge, 0.9), nil, query("more"), 2)
	assert.False(t, need)
}

func TestPolicy_EmptyRetrieval(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 2)
	q := query("what does the quarterly report say")

	need, reason := p.Evaluate(decision(core.RouteDocumentRetrieval, 0.9), nil, q, 0)
	assert.True(t, need)
	assert.Equal(t, ReasonEmptyRetrieval, reason)

	lowScores := []core.RetrievedPassage{{DocID: "d1", Score: 0.4}, {DocID: "d2", Score: 0.69}}
	need, reason = p.Evaluate(decision(core.RouteDocumentRetrieval, 0.9), lowScores, q, 0)
	assert.True(t, need)
	assert.Equal(t, ReasonEmptyRetrieval, reason)

	good := []core.RetrievedPassage{{DocID: "d1", Score: 0.71}}
	need, _ = p.Evaluate(decision(core.RouteDocumentRetrieval, 0.9), good, q, 0)
	assert.False(t, need)
}

func TestPolicy_StructuredQueryNeedsEntity(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 2)

	need, reason := p.Evaluate(decision(core.RouteStructuredQuery, 0.9), nil, query("run the numbers please"), 0)
	assert.True(t, need)
	assert.Equal(t, ReasonMissingEntity, reason)

	need, _ = p.Evaluate(decision(core.RouteStructuredQuery, 0.9), nil, query("total sales for march"), 0)
	assert.False(t, need)
}

func TestPolicy_ClassifiedVague(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 2)
	need, reason := p.Evaluate(decision(core.RouteClarification, 0.9), nil, query("help me with the thing"), 0)
	assert.True(t, need)
	assert.Equal(t, ReasonClassifiedVague, reason)
}

func TestPolicy_Pure(t *testing.T) {
	p := NewPolicy(0.5, 0.7, 3)
	d := decision(core.RouteDocumentRetrieval, 0.8)
	preview := []core.RetrievedPassage{{DocID: "d1", Score: 0.2}}
	q := query("what does the report say")

	need1, reason1 := p.Evaluate(d, preview, q, 1)
	need2, reason2 := p.Evaluate(d, preview, q, 1)
	assert.Equal(t, need1, need2)
	assert.Equal(t, reason1, reason2)
}
