package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/model"
)

func TestGeneralAgentAnswers(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponseContains("What is business intelligence", "BI is the practice of turning data into decisions.")

	a := NewGeneralAgent(m)

	q, err := core.NewQuery("sess-1", "What is business intelligence?", 0)
	require.NoError(t, err)

	resp, err := a.Answer(context.Background(), q, core.RouteDecision{Label: core.RouteGeneralKnowledge, Confidence: 0.9}, nil)
	require.NoError(t, err)

	assert.Equal(t, "BI is the practice of turning data into decisions.", resp.Text)
	assert.Empty(t, resp.Attachments)
}

func TestGeneralAgentModelFailureDegrades(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.FailGenerate(errors.New("backend down"))

	a := NewGeneralAgent(m)

	q, err := core.NewQuery("sess-1", "explain KPIs", 0)
	require.NoError(t, err)

	resp, err := a.Answer(context.Background(), q, core.RouteDecision{Label: core.RouteGeneralKnowledge}, nil)
	require.NoError(t, err)

	assert.Contains(t, resp.Text, "trouble reaching")
}

func TestGeneralAgentTimeoutDegrades(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.FailGenerate(context.DeadlineExceeded)

	a := NewGeneralAgent(m)

	q, err := core.NewQuery("sess-1", "explain KPIs", 0)
	require.NoError(t, err)

	resp, err := a.Answer(context.Background(), q, core.RouteDecision{Label: core.RouteGeneralKnowledge}, nil)
	require.NoError(t, err)

	assert.Contains(t, resp.Text, "timed out")
}

func TestGeneralAgentUsesHistory(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponseContains("Previous conversation:", "contextual answer")

	a := NewGeneralAgent(m)

	conv := core.NewConversation("sess-1", 10, 1<<20)
	q0, err := core.NewQuery("sess-1", "what are KPIs", 0)
	require.NoError(t, err)
	conv.Append(core.NewTurn(q0, core.Response{Text: "KPIs are key performance indicators."}, nil))

	q, err := core.NewQuery("sess-1", "give me three examples", 1)
	require.NoError(t, err)

	resp, err := a.Answer(context.Background(), q, core.RouteDecision{Label: core.RouteGeneralKnowledge}, conv)
	require.NoError(t, err)

	assert.Equal(t, "contextual answer", resp.Text)
}

func TestGeneralAgentStripsReasoningTrace(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponseContains("explain", "<think>short answer is best</think>Metrics measure, KPIs steer.")

	a := NewGeneralAgent(m)

	q, err := core.NewQuery("sess-1", "explain KPIs vs metrics", 0)
	require.NoError(t, err)

	resp, err := a.Answer(context.Background(), q, core.RouteDecision{Label: core.RouteGeneralKnowledge}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Metrics measure, KPIs steer.", resp.Text)
}
