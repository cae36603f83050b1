package model

import "strings"

// TraceFilter removes internal reasoning traces from generated text before it
// becomes part of a response. Models run with extended reasoning enabled may
// interleave a trace between a configurable marker pair; the filter strips
// every such span, including a trailing unterminated one (a truncated trace
// from a length-capped completion).
type TraceFilter struct {
	open  string
	close string
}

// NewTraceFilter creates a filter for the given marker pair. Empty markers
// yield a pass-through filter.
func NewTraceFilter(open, close string) TraceFilter {
	return TraceFilter{open: open, close: close}
}

// DefaultTraceFilter matches the common <think>...</think> convention.
func DefaultTraceFilter() TraceFilter { return NewTraceFilter("<think>", "</think>") }

// Apply returns text with all reasoning trace spans removed and surrounding
// whitespace trimmed.
func (f TraceFilter) Apply(text string) string {
	if f.open == "" || f.close == "" {
		return text
	}
	var b strings.Builder
	for {
		start := strings.Index(text, f.open)
		if start < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+len(f.open):]
		end := strings.Index(rest, f.close)
		if end < 0 {
			// unterminated trace: drop everything after the open marker
			break
		}
		text = rest[end+len(f.close):]
	}
	return strings.TrimSpace(b.String())
}
