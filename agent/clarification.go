package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/internal/util"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/policy"
)

// Compile-time check to ensure ClarificationAgent satisfies the core.RouteAgent interface.
var _ core.RouteAgent = (*ClarificationAgent)(nil)

// clarificationTemplate is the skeleton of every clarification reply. It is
// rendered locally; this agent never consults the model, so a clarification
// turn always succeeds even when every backend is down.
const clarificationTemplate = `{{.intro}}

{{.questions}}

{{.examples}}`

// intros keyed by the precondition that forced the clarification turn.
var intros = map[policy.Reason]string{
	policy.ReasonLowConfidence:   "I'd be happy to help, but I'm not sure which direction to take your question. To give you the most relevant answer, I need a bit more detail.",
	policy.ReasonEmptyRetrieval:  "I looked through the documents but didn't find anything that clearly matches your question. A little more detail would help me search better.",
	policy.ReasonShortQuery:      "I'd be happy to help you with that! To give you the most relevant information, I need a bit more detail.",
	policy.ReasonMissingEntity:   "It sounds like a data question, but I'm missing which metric or subject you mean. A bit more detail would let me query the right numbers.",
	policy.ReasonClassifiedVague: "I'd be happy to help you with that! To give you the most relevant information, I need a bit more detail.",
}

var defaultIntro = "I'd be happy to help you with that! To give you the most relevant information, I need a bit more detail."

// followUpQuestions keyed by the likely intent guessed from the query wording.
var followUpQuestions = map[core.RouteLabel][]string{
	core.RouteDocumentRetrieval: {
		"What specific topic or document are you looking for?",
		"Are you looking for information from reports, policies, or other documents?",
	},
	core.RouteStructuredQuery: {
		"What specific data or metrics are you interested in?",
		"What time period should I focus on?",
	},
	core.RouteGeneralKnowledge: {
		"What specific information are you looking for?",
		"Are you asking about company data or general information?",
	},
}

// exampleQueries keyed by likely intent, shown so the user can pattern-match
// a well-formed question.
var exampleQueries = map[core.RouteLabel]string{
	core.RouteDocumentRetrieval: `For example, you could ask:
• "What does our employee handbook say about vacation policies?"
• "What are the key findings from the market research document?"`,
	core.RouteStructuredQuery: `For example, you could ask:
• "What were our total sales last month?"
• "Show me the top 5 customers by revenue"`,
	core.RouteGeneralKnowledge: `For example, you could ask:
• "What is business intelligence and how does it work?"
• "Explain the difference between KPIs and metrics"`,
}

// ClarificationAgentOptions holds configuration overrides passed to
// NewClarificationAgent().
type ClarificationAgentOptions struct {
	// Logger receives agent diagnostics.
	Logger logging.Logger
}

// ClarificationAgent composes the follow-up question turn. It deliberately
// generates no content of its own: the reply is built entirely from local
// templates keyed on the trigger reason and a keyword guess at the user's
// likely intent.
type ClarificationAgent struct {
	BaseAgent
	opts ClarificationAgentOptions
}

// NewClarificationAgent constructs the clarification route agent.
func NewClarificationAgent(optFns ...func(o *ClarificationAgentOptions)) *ClarificationAgent {
	opts := ClarificationAgentOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ClarificationAgent{
		BaseAgent: NewBaseAgent("clarification", core.RouteClarification),
		opts:      opts,
	}
}

// Answer implements core.RouteAgent.
func (a *ClarificationAgent) Answer(_ context.Context, q core.Query, decision core.RouteDecision, _ *core.Conversation) (core.Response, error) {
	likely := guessIntent(q.Text)

	intro, ok := intros[policy.Reason(decision.Trigger)]
	if !ok {
		intro = defaultIntro
	}

	questions := followUpQuestions[likely]

	var qb strings.Builder
	for _, question := range questions {
		qb.WriteString("• ")
		qb.WriteString(question)
		qb.WriteString("\n")
	}

	text, err := util.RenderTemplate(clarificationTemplate, map[string]any{
		"intro":     intro,
		"questions": strings.TrimRight(qb.String(), "\n"),
		"examples":  exampleQueries[likely],
	})
	if err != nil {
		// The template is a constant; a render failure is a programming
		// error, but the turn must still produce a usable reply.
		a.opts.Logger.Error("clarification template render failed", "error", err)

		text = intro
	}

	return core.Response{Text: text, Decision: decision}, nil
}

// guessIntent does a cheap keyword scan to pick which follow-up questions and
// examples fit the query best.
func guessIntent(text string) core.RouteLabel {
	lower := strings.ToLower(text)

	for _, word := range []string{"document", "report", "file", "pdf", "policy", "handbook"} {
		if strings.Contains(lower, word) {
			return core.RouteDocumentRetrieval
		}
	}

	for _, word := range []string{"data", "sales", "revenue", "customer", "analytics", "metric"} {
		if strings.Contains(lower, word) {
			return core.RouteStructuredQuery
		}
	}

	return core.RouteGeneralKnowledge
}
