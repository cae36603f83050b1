package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
	"github.com/hupe1980/querymesh/structured"
)

// Compile-time check to ensure StructuredAgent satisfies the core.RouteAgent interface.
var _ core.RouteAgent = (*StructuredAgent)(nil)

const sqlGenerationSystemPrompt = `You are an expert SQL analyst. Given a database schema and a question,
write a single SQLite SELECT statement that answers it. Rules:
- Output ONLY the SQL statement, no explanation.
- Read-only: never modify data or schema.
- Use only tables and columns from the schema.`

const insightsSystemPrompt = `You are a business analyst. Given a question, the SQL that was run, and a
summary of the results, write a short plain-language answer. Mention concrete
numbers from the summary. Do not invent figures that are not in the summary.`

// StructuredAgentOptions holds dependency + configuration overrides passed to
// NewStructuredAgent().
type StructuredAgentOptions struct {
	// HistoryTurns bounds how much dialogue context enters the SQL prompt.
	HistoryTurns int

	// SQLTemperature used for statement generation; kept low for determinism.
	SQLTemperature float64

	// InsightsTemperature used for the narrative answer.
	InsightsTemperature float64

	// MaxTokens bounds generated output for both calls.
	MaxTokens int64

	// TraceFilter strips internal reasoning spans from model output.
	TraceFilter model.TraceFilter

	// Logger receives agent diagnostics.
	Logger logging.Logger
}

// StructuredAgent answers data questions end to end: it grounds the model on
// the live schema to produce a SELECT statement, validates and executes it,
// then narrates the results. The raw table and a suggested chart ride along
// as attachments so callers can render them.
type StructuredAgent struct {
	BaseAgent
	model    model.Model
	executor core.QueryExecutor
	schema   core.SchemaProvider
	opts     StructuredAgentOptions
}

// NewStructuredAgent wires a model, executor, and schema provider into the
// structured-query route agent.
func NewStructuredAgent(m model.Model, executor core.QueryExecutor, schema core.SchemaProvider, optFns ...func(o *StructuredAgentOptions)) *StructuredAgent {
	opts := StructuredAgentOptions{
		HistoryTurns:        2,
		SQLTemperature:      0.1,
		InsightsTemperature: 0.4,
		MaxTokens:           500,
		TraceFilter:         model.DefaultTraceFilter(),
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &StructuredAgent{
		BaseAgent: NewBaseAgent("structured", core.RouteStructuredQuery),
		model:     m,
		executor:  executor,
		schema:    schema,
		opts:      opts,
	}
}

// Answer implements core.RouteAgent.
func (a *StructuredAgent) Answer(ctx context.Context, q core.Query, decision core.RouteDecision, conv *core.Conversation) (core.Response, error) {
	if a.executor == nil || a.schema == nil {
		return core.Response{
			Text:     "No analytics database is connected, so I can't answer data questions in this deployment.",
			Decision: decision,
		}, nil
	}

	tables, err := a.schema.Describe(ctx)
	if err != nil {
		a.opts.Logger.Warn("schema lookup failed", "error", err)

		return core.Response{
			Text:     "I couldn't read the database schema, so I can't answer data questions right now. Please try again shortly.",
			Decision: decision,
		}, nil
	}

	stmt, err := a.generateSQL(ctx, q, tables, conv)
	if err != nil {
		a.opts.Logger.Warn("sql generation failed", "error", err)

		return core.Response{
			Text:     "I couldn't translate your question into a database query. Could you rephrase it, naming the metric and time period you're after?",
			Decision: decision,
		}, nil
	}

	if err := structured.ValidateStatement(stmt); err != nil {
		a.opts.Logger.Warn("generated sql rejected", "sql", stmt, "error", err)

		return core.Response{
			Text:     fmt.Sprintf("The query I generated was rejected for safety (%v). Could you rephrase your question?", err),
			Decision: decision,
		}, nil
	}

	rs, err := a.executor.Execute(ctx, stmt)
	if err != nil {
		a.opts.Logger.Warn("query execution failed", "sql", stmt, "error", err)

		return core.Response{
			Text:     fmt.Sprintf("I ran into a database error executing the query: %v. Rephrasing the question sometimes helps.", err),
			Decision: decision,
		}, nil
	}

	summary := structured.SummarizeResultSet(rs)
	text := a.narrate(ctx, q, stmt, summary)

	attachments := []core.Attachment{tableAttachment(rs, stmt)}
	if chartType := structured.SuggestChart(rs, q.Text); chartType != "" {
		if payload := structured.BuildChartPayload(rs, chartType); payload != nil {
			attachments = append(attachments, core.Attachment{Kind: core.AttachmentKindChart, Payload: payload})
		}
	}

	return core.Response{
		Text:        text,
		Decision:    decision,
		Attachments: attachments,
	}, nil
}

func (a *StructuredAgent) generateSQL(ctx context.Context, q core.Query, tables []core.TableInfo, conv *core.Conversation) (string, error) {
	var sb strings.Builder

	sb.WriteString("Schema:\n")

	for _, table := range tables {
		cols := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cols[i] = col.Name + " " + col.Type
		}

		fmt.Fprintf(&sb, "TABLE %s (%s)\n", table.Name, strings.Join(cols, ", "))
	}

	if history := dialogueContext(conv, a.opts.HistoryTurns); history != "" {
		sb.WriteString("\nPrevious conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nQuestion: %s", q.Text)

	resp, err := a.model.Generate(ctx, model.Request{
		System:      sqlGenerationSystemPrompt,
		Prompt:      sb.String(),
		Temperature: a.opts.SQLTemperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	stmt := structured.StripCodeFences(a.opts.TraceFilter.Apply(resp.Text))
	if stmt == "" {
		return "", fmt.Errorf("model returned no sql")
	}

	return stmt, nil
}

// narrate asks the model for a plain-language answer grounded on the result
// summary. On failure it falls back to the summary itself rather than
// dropping the turn.
func (a *StructuredAgent) narrate(ctx context.Context, q core.Query, stmt, summary string) string {
	prompt := fmt.Sprintf("Question: %s\n\nSQL Query executed: %s\n\nResult summary:\n%s", q.Text, stmt, summary)

	resp, err := a.model.Generate(ctx, model.Request{
		System:      insightsSystemPrompt,
		Prompt:      prompt,
		Temperature: a.opts.InsightsTemperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		a.opts.Logger.Warn("insights generation failed", "error", err)

		return "Here is what the data shows:\n" + summary
	}

	return a.opts.TraceFilter.Apply(resp.Text)
}

func tableAttachment(rs *core.ResultSet, stmt string) core.Attachment {
	return core.Attachment{
		Kind: core.AttachmentKindTable,
		Payload: map[string]any{
			"sql":     stmt,
			"columns": rs.Columns,
			"rows":    rs.Rows,
		},
	}
}
