package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
	"github.com/hupe1980/querymesh/retrieval"
)

// Compile-time check to ensure RetrievalAgent satisfies the core.RouteAgent interface.
var _ core.RouteAgent = (*RetrievalAgent)(nil)

const retrievalSystemPrompt = `You are a helpful assistant answering questions from a document collection.
Answer using ONLY the provided document excerpts. If the excerpts do not
contain the answer, say so plainly. Cite documents by their source name.`

// RetrievalAgentOptions holds dependency + configuration overrides passed to
// NewRetrievalAgent().
type RetrievalAgentOptions struct {
	// TopK is the number of passages requested from the retrieval engine.
	TopK int

	// SimilarityThreshold filters passages scoring below it.
	SimilarityThreshold float64

	// HistoryTurns bounds how much dialogue context enters the prompt.
	HistoryTurns int

	// Temperature used for answer generation.
	Temperature float64

	// MaxTokens bounds the generated answer.
	MaxTokens int64

	// TraceFilter strips internal reasoning spans from model output.
	TraceFilter model.TraceFilter

	// Logger receives agent diagnostics.
	Logger logging.Logger
}

// RetrievalAgent answers document questions: it searches the vector index for
// relevant passages, grounds the model on them, and attaches the evidence it
// used. When retrieval is unavailable or comes back empty the agent degrades
// to an honest "nothing found" answer instead of failing the turn.
type RetrievalAgent struct {
	BaseAgent
	engine *retrieval.Engine
	model  model.Model
	opts   RetrievalAgentOptions
}

// NewRetrievalAgent wires a retrieval engine and a generation model into a
// document-retrieval route agent.
func NewRetrievalAgent(engine *retrieval.Engine, m model.Model, optFns ...func(o *RetrievalAgentOptions)) *RetrievalAgent {
	opts := RetrievalAgentOptions{
		TopK:                5,
		SimilarityThreshold: 0.7,
		HistoryTurns:        2,
		Temperature:         0.3,
		MaxTokens:           500,
		TraceFilter:         model.DefaultTraceFilter(),
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &RetrievalAgent{
		BaseAgent: NewBaseAgent("retrieval", core.RouteDocumentRetrieval),
		engine:    engine,
		model:     m,
		opts:      opts,
	}
}

// followUpIndicators mark queries that lean on earlier turns for meaning.
var followUpIndicators = []string{
	"also", "additionally", "furthermore", "moreover", "besides",
	"what about", "how about", "can you also", "tell me more",
	"explain further", "elaborate", "continue", "more details",
}

// anaphoricPronouns refer back to something named in a previous turn.
var anaphoricPronouns = []string{"it", "this", "that", "they", "them", "these", "those"}

// Answer implements core.RouteAgent.
func (a *RetrievalAgent) Answer(ctx context.Context, q core.Query, decision core.RouteDecision, conv *core.Conversation) (core.Response, error) {
	searchQuery := q
	if enhanced := enhanceFollowUpQuery(q, conv); enhanced != q.Text {
		searchQuery.Text = enhanced

		a.opts.Logger.Debug("follow-up detected, enhanced retrieval query", "session_id", q.SessionID, "query", enhanced)
	}

	passages, err := a.engine.Search(ctx, searchQuery, a.opts.TopK, a.opts.SimilarityThreshold)
	if err != nil {
		if core.IsRetrievalUnavailable(err) {
			a.opts.Logger.Warn("document search unavailable", "error", err)

			return core.Response{
				Text:     "I couldn't reach the document index just now, so I can't answer from the documents. Please try again in a moment.",
				Decision: decision,
			}, nil
		}

		return core.Response{}, fmt.Errorf("retrieval agent: %w", err)
	}

	if len(passages) == 0 {
		return core.Response{
			Text:     "I couldn't find anything in the documents that matches your question. Could you rephrase it or name the document or topic you have in mind?",
			Decision: decision,
		}, nil
	}

	prompt := a.buildPrompt(q, passages, conv)

	resp, err := a.model.Generate(ctx, model.Request{
		System:      retrievalSystemPrompt,
		Prompt:      prompt,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		a.opts.Logger.Warn("answer generation failed", "error", err)

		return core.Response{
			Text:        "I found relevant documents but couldn't compose an answer right now. The most relevant source is " + passages[0].DocID + ".",
			Decision:    decision,
			Attachments: []core.Attachment{core.NewEvidenceAttachment(evidenceFrom(passages))},
		}, nil
	}

	return core.Response{
		Text:        a.opts.TraceFilter.Apply(resp.Text),
		Decision:    decision,
		Attachments: []core.Attachment{core.NewEvidenceAttachment(evidenceFrom(passages))},
	}, nil
}

// buildPrompt renders the excerpts block plus optional dialogue context.
func (a *RetrievalAgent) buildPrompt(q core.Query, passages []core.RetrievedPassage, conv *core.Conversation) string {
	var sb strings.Builder

	if history := dialogueContext(conv, a.opts.HistoryTurns); history != "" {
		sb.WriteString("Previous conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Document excerpts:\n")

	for i, p := range passages {
		fmt.Fprintf(&sb, "Document %d (Source: %s, Relevance: %.2f):\n%s\n\n", i+1, p.DocID, p.Score, p.Text)
	}

	fmt.Fprintf(&sb, "Question: %s", q.Text)

	return sb.String()
}

// enhanceFollowUpQuery prepends the two most recent user queries when the
// current query depends on earlier turns for its meaning. Standalone queries
// and first turns come back unchanged.
func enhanceFollowUpQuery(q core.Query, conv *core.Conversation) string {
	if conv == nil || conv.Len() == 0 || !isFollowUpQuery(q.Text) {
		return q.Text
	}

	recent := conv.Recent(2)
	parts := make([]string, 0, len(recent)+1)
	for _, turn := range recent {
		parts = append(parts, turn.Query.Text)
	}
	parts = append(parts, q.Text)

	return strings.Join(parts, " ")
}

func isFollowUpQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range followUpIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	padded := " " + lower + " "
	for _, pronoun := range anaphoricPronouns {
		if strings.Contains(padded, " "+pronoun+" ") {
			return true
		}
	}

	return false
}

func evidenceFrom(passages []core.RetrievedPassage) []core.Evidence {
	refs := make([]core.Evidence, len(passages))
	for i, p := range passages {
		refs[i] = core.Evidence{DocID: p.DocID, Score: p.Score}
	}

	return refs
}
