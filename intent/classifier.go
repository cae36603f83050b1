package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
)

// classificationPrompt asks the model for a JSON verdict. The label values
// mirror core.RouteLabel so the reply parses without a mapping table.
const classificationPrompt = `Analyze the user's query and classify it into one of these categories:
1. "document_retrieval" - questions about documents, reports, unstructured data
2. "structured_query" - questions about data analysis, metrics, structured data queries
3. "general_knowledge" - general questions not related to stored data
4. "clarification" - vague queries that need clarification

Context from previous conversation:
%s

Current user query: "%s"

Respond with JSON only:
{"intent": "document_retrieval|structured_query|general_knowledge|clarification", "confidence": 0.8, "reasoning": "brief explanation"}`

// Options holds dependency + configuration overrides passed to NewClassifier().
type Options struct {
	// ConfidenceFloor is the clarification floor; degraded decisions are
	// capped just below it.
	ConfidenceFloor float64
	// Epsilon is the tie band within which the safer route wins.
	Epsilon float64
	// HistoryTurns bounds how much recent context enters the prompt.
	HistoryTurns int
	// DecisiveScore is the heuristic score above which the model delegate
	// is skipped entirely.
	DecisiveScore float64
	// Temperature for the model delegate; classification wants low variance.
	Temperature float64
	// MaxTokens bounds the delegate reply.
	MaxTokens int64
	// Logger receives classification diagnostics.
	Logger logging.Logger
}

// Classifier assigns a route label from lexical signal plus a model delegate
// for ambiguous cases. Deterministic given identical (query, history, model).
type Classifier struct {
	model model.Model
	opts  Options
}

// NewClassifier constructs a Classifier with optional overrides.
func NewClassifier(m model.Model, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		ConfidenceFloor: 0.5,
		Epsilon:         0.1,
		HistoryTurns:    3,
		DecisiveScore:   0.7,
		Temperature:     0.1,
		MaxTokens:       200,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{model: m, opts: opts}
}

// Classify inspects the query plus recent history and returns a route
// decision. It never returns an error: when the inference service is
// unreachable it degrades to the keyword heuristic with confidence capped
// below the clarification floor, which downstream policy converts into a
// clarification turn.
func (c *Classifier) Classify(ctx context.Context, q core.Query, recent []core.Turn) core.RouteDecision {
	scores := heuristicScores(q)
	label, score := pickLabel(scores, c.opts.Epsilon)

	// strong lexical signal needs no model round-trip
	if score >= c.opts.DecisiveScore {
		c.opts.Logger.Debug("classifier decided from keywords", "label", label, "score", score)
		return core.RouteDecision{Label: label, Confidence: score, Reasoning: "keyword signal"}
	}

	decision, err := c.delegate(ctx, q, recent)
	if err != nil {
		c.opts.Logger.Warn("classifier degraded to heuristic", "error", err)
		return core.RouteDecision{
			Label:      label,
			Confidence: c.degradedConfidence(),
			Reasoning:  "inference service unreachable; keyword fallback",
		}
	}
	return decision
}

// degradedConfidence returns a value strictly below the clarification floor
// so a degraded classification always resolves to a clarification turn.
func (c *Classifier) degradedConfidence() float64 {
	conf := c.opts.ConfidenceFloor - 0.05
	if conf < 0 {
		conf = 0
	}
	return conf
}

func (c *Classifier) delegate(ctx context.Context, q core.Query, recent []core.Turn) (core.RouteDecision, error) {
	prompt := fmt.Sprintf(classificationPrompt, historyContext(recent, c.opts.HistoryTurns), q.Text)

	resp, err := c.model.Generate(ctx, model.Request{
		Prompt:      prompt,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return core.RouteDecision{}, fmt.Errorf("classification delegate: %w", err)
	}
	return parseDecision(resp.Text), nil
}

// historyContext renders the last n turns as compact dialogue lines.
func historyContext(recent []core.Turn, n int) string {
	if len(recent) == 0 {
		return "(no prior conversation)"
	}
	if len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	var b strings.Builder
	for _, t := range recent {
		fmt.Fprintf(&b, "User: %s\nBot: %s\n", t.Query.Text, t.Response.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseDecision extracts a decision from the model reply: strict JSON first,
// then a tolerant keyword scan over the raw text (small local models often
// wrap JSON in prose).
func parseDecision(text string) core.RouteDecision {
	var verdict struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}

	raw := strings.TrimSpace(text)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(raw), &verdict); err == nil {
		if label := core.RouteLabel(verdict.Intent); label.Valid() {
			return core.RouteDecision{Label: label, Confidence: clamp01(verdict.Confidence), Reasoning: verdict.Reasoning}
		}
	}

	// tolerant fallback
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "document_retrieval") || strings.Contains(lower, "document"):
		return core.RouteDecision{Label: core.RouteDocumentRetrieval, Confidence: 0.6, Reasoning: "keyword scan of model reply"}
	case strings.Contains(lower, "structured_query") || strings.Contains(lower, "sql") || strings.Contains(lower, "data"):
		return core.RouteDecision{Label: core.RouteStructuredQuery, Confidence: 0.6, Reasoning: "keyword scan of model reply"}
	case strings.Contains(lower, "clarification") || strings.Contains(lower, "vague"):
		return core.RouteDecision{Label: core.RouteClarification, Confidence: 0.6, Reasoning: "keyword scan of model reply"}
	default:
		return core.RouteDecision{Label: core.RouteGeneralKnowledge, Confidence: 0.6, Reasoning: "keyword scan of model reply"}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
