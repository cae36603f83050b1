package agent

import (
	"context"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
)

// Compile-time check to ensure GeneralAgent satisfies the core.RouteAgent interface.
var _ core.RouteAgent = (*GeneralAgent)(nil)

const generalSystemPrompt = `You are a knowledgeable assistant. Answer the question directly and
concisely from your own knowledge. If the question concerns internal company
data or documents you do not have, say so instead of guessing.`

// GeneralAgentOptions holds configuration overrides passed to NewGeneralAgent().
type GeneralAgentOptions struct {
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

// GeneralAgent answers open questions from the model's own knowledge, with
// recent dialogue as context. It needs no backend beyond the model itself.
type GeneralAgent struct {
	BaseAgent
	model model.Model
	opts  GeneralAgentOptions
}

// NewGeneralAgent constructs the general-knowledge route agent.
func NewGeneralAgent(m model.Model, optFns ...func(o *GeneralAgentOptions)) *GeneralAgent {
	opts := GeneralAgentOptions{
		HistoryTurns: 3,
		Temperature:  0.7,
		MaxTokens:    500,
		TraceFilter:  model.DefaultTraceFilter(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &GeneralAgent{
		BaseAgent: NewBaseAgent("general", core.RouteGeneralKnowledge),
		model:     m,
		opts:      opts,
	}
}

// Answer implements core.RouteAgent.
func (a *GeneralAgent) Answer(ctx context.Context, q core.Query, decision core.RouteDecision, conv *core.Conversation) (core.Response, error) {
	prompt := q.Text

	if history := dialogueContext(conv, a.opts.HistoryTurns); history != "" {
		prompt = "Previous conversation:\n" + history + "\n\nQuestion: " + q.Text
	}

	resp, err := a.model.Generate(ctx, model.Request{
		System:      generalSystemPrompt,
		Prompt:      prompt,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		a.opts.Logger.Warn("answer generation failed", "error", err)

		text := "I'm having trouble reaching my knowledge backend right now. Please try again shortly."
		if core.IsTimeout(err) {
			text = "That question took too long to answer and the request timed out. Please try again, or ask something more specific."
		}

		return core.Response{
			Text:     text,
			Decision: decision,
		}, nil
	}

	return core.Response{
		Text:     a.opts.TraceFilter.Apply(resp.Text),
		Decision: decision,
	}, nil
}
