package model

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// ErrEmbeddingsUnsupported is returned by providers that cannot compute
// embeddings (e.g. the Anthropic Messages API). Callers wanting retrieval must
// wire an embedding-capable model.
var ErrEmbeddingsUnsupported = errors.New("model does not support embeddings")

// Request captures one bounded generation call. Every request must run under
// a caller-supplied context deadline; providers never block indefinitely.
type Request struct {
	System            string  `json:"system,omitempty"`       // System/instruction prompt
	Prompt            string  `json:"prompt"`                 // User-facing prompt text
	Temperature       float64 `json:"temperature"`            // Sampling temperature
	MaxTokens         int64   `json:"max_tokens"`             // Output length bound
	ExtendedReasoning bool    `json:"extended_reasoning"`     // Ask for an internal reasoning pass
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the complete output of a generation call. Text may still carry
// a reasoning trace; the TraceFilter strips it before the text reaches a
// core.Response.
type Response struct {
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name               string `json:"name"`
	Provider           string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsEmbeddings bool   `json:"supports_embeddings"`
}

// Model is the minimal interface required to drive classification, retrieval
// and answer generation.
type Model interface {
	// Generate produces text for the request, honoring ctx for cancellation
	// and deadlines.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Embed computes an embedding vector for the text. Providers without an
	// embeddings endpoint return ErrEmbeddingsUnsupported.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Info returns information about the model implementation.
	Info() Info
}

// containsRule is a substring-keyed canned response used by MockModel.
type containsRule struct{ substr, response string }

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It is fully deterministic: canned responses are matched first by exact
// prompt, then by substring rules in registration order, then a generated
// fallback. Embeddings hash the prompt tokens into a fixed-width unit vector
// so identical texts always embed identically.
type MockModel struct {
	info        Info
	responses   map[string]string
	contains    []containsRule
	embeddings  map[string][]float64
	generateErr error
	embedErr    error
}

// NewMockModel constructs a MockModel with embedding support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:               name,
			Provider:           provider,
			SupportsEmbeddings: true,
		},
		responses:  make(map[string]string),
		embeddings: make(map[string][]float64),
	}
}

// AddResponse registers a deterministic canned completion for an exact prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// AddResponseContains registers a canned completion matched when the prompt
// contains substr. Rules are evaluated in registration order.
func (m *MockModel) AddResponseContains(substr, response string) {
	m.contains = append(m.contains, containsRule{substr: substr, response: response})
}

// AddEmbedding registers a fixed embedding for a text, overriding the hashed
// fallback.
func (m *MockModel) AddEmbedding(text string, vector []float64) { m.embeddings[text] = vector }

// FailGenerate makes subsequent Generate calls return err (nil restores
// normal behavior). Used to exercise degradation paths.
func (m *MockModel) FailGenerate(err error) { m.generateErr = err }

// FailEmbed makes subsequent Embed calls return err (nil restores normal
// behavior).
func (m *MockModel) FailEmbed(err error) { m.embedErr = err }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text, ok := m.responses[req.Prompt]; ok {
		return &Response{Text: text, FinishReason: "stop"}, nil
	}
	for _, rule := range m.contains {
		if strings.Contains(req.Prompt, rule.substr) {
			return &Response{Text: rule.response, FinishReason: "stop"}, nil
		}
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt), FinishReason: "stop"}, nil
}

// mockEmbeddingDim is the width of hashed fallback embeddings.
const mockEmbeddingDim = 16

// Embed implements Model.
func (m *MockModel) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := m.embeddings[text]; ok {
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	}
	return hashedEmbedding(text), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// hashedEmbedding folds the lowercased tokens of text into a unit vector.
// Texts sharing tokens land near each other, which is enough signal for
// retrieval tests without a real embedding model.
func hashedEmbedding(text string) []float64 {
	vec := make([]float64, mockEmbeddingDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%mockEmbeddingDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
