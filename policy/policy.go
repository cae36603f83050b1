// Package policy decides whether a classified query can proceed on its route
// or must be answered with a clarification question instead. The decision is
// a pure predicate over the route decision, an optional retrieval preview and
// the query itself; it mutates nothing, so identical inputs always yield
// identical results.
package policy

import (
	"strings"

	"github.com/hupe1980/querymesh/core"
)

// Reason identifies which precondition failed. The clarification agent picks
// its follow-up template from this value.
type Reason string

const (
	// ReasonNone means all preconditions held; no clarification needed.
	ReasonNone Reason = ""
	// ReasonLowConfidence means the classifier's confidence fell below the floor.
	ReasonLowConfidence Reason = "low_confidence"
	// ReasonEmptyRetrieval means a document route found nothing above threshold.
	ReasonEmptyRetrieval Reason = "empty_retrieval"
	// ReasonShortQuery means the query is too short with no history to resolve it.
	ReasonShortQuery Reason = "short_query"
	// ReasonMissingEntity means a structured route lacks any entity or metric term.
	ReasonMissingEntity Reason = "missing_entity"
	// ReasonClassifiedVague means the classifier itself selected the clarification route.
	ReasonClassifiedVague Reason = "classified_vague"
)

// entityTerms is the vocabulary a structured query must touch to be
// answerable: a metric, an aggregate or a recognizable subject.
var entityTerms = []string{
	"sales", "revenue", "customer", "order", "product", "profit", "cost",
	"count", "total", "sum", "average", "avg", "top", "how many", "how much",
	"metric", "kpi", "employee", "region", "month", "quarter", "year",
}

// Policy evaluates route preconditions. Construct with NewPolicy; the zero
// value uses zero thresholds and trips on nothing but explicit signals.
type Policy struct {
	confidenceFloor     float64
	similarityThreshold float64
	minQueryTokens      int
}

// NewPolicy creates a policy with the given tunables. The threshold values
// are configuration inputs; no specific numeric default carries semantic
// meaning beyond "tunable".
func NewPolicy(confidenceFloor, similarityThreshold float64, minQueryTokens int) *Policy {
	return &Policy{
		confidenceFloor:     confidenceFloor,
		similarityThreshold: similarityThreshold,
		minQueryTokens:      minQueryTokens,
	}
}

// Evaluate reports whether the query needs a clarification turn and why.
// preview may be nil for routes that do not retrieve. historyLen is the
// number of prior turns available to resolve an otherwise ambiguous query.
func (p *Policy) Evaluate(decision core.RouteDecision, preview []core.RetrievedPassage, q core.Query, historyLen int) (bool, Reason) {
	if decision.Label == core.RouteClarification {
		return true, ReasonClassifiedVague
	}
	if decision.BelowFloor(p.confidenceFloor) {
		return true, ReasonLowConfidence
	}
	if len(q.Tokens()) < p.minQueryTokens && historyLen == 0 {
		return true, ReasonShortQuery
	}
	if decision.Label == core.RouteDocumentRetrieval && allBelowThreshold(preview, p.similarityThreshold) {
		return true, ReasonEmptyRetrieval
	}
	if decision.Label == core.RouteStructuredQuery && !hasEntityTerm(q.Text) {
		return true, ReasonMissingEntity
	}
	return false, ReasonNone
}

func allBelowThreshold(preview []core.RetrievedPassage, threshold float64) bool {
	for _, p := range preview {
		if p.Score >= threshold {
			return false
		}
	}
	return true
}

func hasEntityTerm(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range entityTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
