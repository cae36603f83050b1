package core

// RouteLabel identifies one of the four answer strategies. The set is closed:
// route dispatch is a fixed mapping from label to agent, never an open-ended
// dispatch table.
type RouteLabel string

const (
	// RouteDocumentRetrieval answers from retrieved document passages.
	RouteDocumentRetrieval RouteLabel = "document_retrieval"
	// RouteStructuredQuery answers by translating the question into a
	// structured query and summarizing the returned rows.
	RouteStructuredQuery RouteLabel = "structured_query"
	// RouteGeneralKnowledge answers directly from the model with no
	// retrieval step.
	RouteGeneralKnowledge RouteLabel = "general_knowledge"
	// RouteClarification returns a follow-up question instead of a
	// substantive answer.
	RouteClarification RouteLabel = "clarification"
)

// Valid reports whether l is a member of the closed route set.
func (l RouteLabel) Valid() bool {
	switch l {
	case RouteDocumentRetrieval, RouteStructuredQuery, RouteGeneralKnowledge, RouteClarification:
		return true
	}
	return false
}

// RouteDecision is the outcome of intent classification: a route label, a
// confidence in [0,1] and the reasoning context that produced it. A decision
// whose confidence falls below the configured floor is downgraded to
// RouteClarification by the orchestrator regardless of the classified label.
type RouteDecision struct {
	Label      RouteLabel `json:"label"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	// Trigger names the precondition that failed when the label was forced
	// to RouteClarification by the clarification policy; empty otherwise.
	Trigger string `json:"trigger,omitempty"`
}

// BelowFloor reports whether the decision's confidence is under the given
// clarification floor.
func (d RouteDecision) BelowFloor(floor float64) bool { return d.Confidence < floor }
