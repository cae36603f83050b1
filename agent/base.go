package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
)

// BaseAgent bundles shared identity helpers and prompt plumbing. Embed it in
// concrete agent implementations and supply an Answer method to satisfy the
// core.RouteAgent interface.
type BaseAgent struct {
	name        string          // Human-readable name
	description string          // Detailed description of agent's purpose
	label       core.RouteLabel // Route label this agent handles
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(name string, label core.RouteLabel) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		label:       label,
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Label returns the route label this agent handles.
func (b *BaseAgent) Label() core.RouteLabel { return b.label }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// dialogueContext renders the most recent turns of a conversation as
// alternating User/Bot lines for inclusion in prompts. Returns "" when there
// is no history.
func dialogueContext(conv *core.Conversation, n int) string {
	if conv == nil {
		return ""
	}

	turns := conv.Recent(n)
	if len(turns) == 0 {
		return ""
	}

	var sb strings.Builder

	for _, turn := range turns {
		fmt.Fprintf(&sb, "User: %s\nBot: %s\n", turn.Query.Text, turn.Response.Text)
	}

	return strings.TrimRight(sb.String(), "\n")
}
