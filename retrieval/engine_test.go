package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.VectorIndex = (*InMemoryIndex)(nil)

// failingIndex simulates an unreachable nearest-neighbor index.
type failingIndex struct{}

func (failingIndex) Query(context.Context, []float64, int) ([]core.IndexCandidate, error) {
	return nil, errors.New("index offline")
}

func (failingIndex) Upsert(context.Context, string, []float64, string) error {
	return errors.New("index offline")
}

// fixedIndex returns a canned candidate set regardless of the query vector.
type fixedIndex struct{ candidates []core.IndexCandidate }

func (f fixedIndex) Query(context.Context, []float64, int) ([]core.IndexCandidate, error) {
	out := make([]core.IndexCandidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

func (fixedIndex) Upsert(context.Context, string, []float64, string) error { return nil }

func testQuery(text string) core.Query {
	return core.Query{Text: text, SessionID: "s1"}
}

func TestEngine_Search_OrderingAndTieBreak(t *testing.T) {
	idx := fixedIndex{candidates: []core.IndexCandidate{
		{DocID: "doc-b", Text: "b", Score: 0.8},
		{DocID: "doc-a", Text: "a", Score: 0.8},
		{DocID: "doc-c", Text: "c", Score: 0.95},
		{DocID: "doc-d", Text: "d", Score: 0.5},
	}}
	engine := NewEngine(model.NewMockModel("m", "mock"), idx)

	passages, err := engine.Search(context.Background(), testQuery("anything"), 10, 0.0)
	require.NoError(t, err)
	require.Len(t, passages, 4)

	// strict descending score, equal scores by ascending doc id
	assert.Equal(t, "doc-c", passages[0].DocID)
	assert.Equal(t, "doc-a", passages[1].DocID)
	assert.Equal(t, "doc-b", passages[2].DocID)
	assert.Equal(t, "doc-d", passages[3].DocID)

	for i, p := range passages {
		assert.Equal(t, i+1, p.Rank)
	}
}

func TestEngine_Search_ThresholdFilterAndTruncate(t *testing.T) {
	idx := fixedIndex{candidates: []core.IndexCandidate{
		{DocID: "d1", Score: 0.9},
		{DocID: "d2", Score: 0.7},
		{DocID: "d3", Score: 0.69},
		{DocID: "d4", Score: 0.2},
	}}
	engine := NewEngine(model.NewMockModel("m", "mock"), idx)

	passages, err := engine.Search(context.Background(), testQuery("q"), 10, 0.7)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "d1", passages[0].DocID)
	assert.Equal(t, "d2", passages[1].DocID)

	passages, err = engine.Search(context.Background(), testQuery("q"), 1, 0.0)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "d1", passages[0].DocID)
}

func TestEngine_Search_EmbeddingFailureIsUnavailable(t *testing.T) {
	m := model.NewMockModel("m", "mock")
	m.FailEmbed(errors.New("inference service down"))
	engine := NewEngine(m, NewInMemoryIndex())

	_, err := engine.Search(context.Background(), testQuery("q"), 5, 0.5)
	require.Error(t, err)
	assert.True(t, core.IsRetrievalUnavailable(err))
}

func TestEngine_Search_IndexFailureIsUnavailable(t *testing.T) {
	engine := NewEngine(model.NewMockModel("m", "mock"), failingIndex{})

	_, err := engine.Search(context.Background(), testQuery("q"), 5, 0.5)
	require.Error(t, err)
	assert.True(t, core.IsRetrievalUnavailable(err))
}

func TestEngine_Search_InvalidArguments(t *testing.T) {
	engine := NewEngine(model.NewMockModel("m", "mock"), NewInMemoryIndex())

	_, err := engine.Search(context.Background(), testQuery("q"), 0, 0.5)
	assert.Error(t, err)

	_, err = engine.Search(context.Background(), testQuery("q"), 5, 1.5)
	assert.Error(t, err)
}

func TestInMemoryIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewInMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, "doc-1", []float64{1, 0}, "alpha"))
	require.NoError(t, idx.Upsert(ctx, "doc-2", []float64{0, 1}, "beta"))
	require.NoError(t, idx.Upsert(ctx, "doc-3", []float64{1, 0.1}, "gamma"))
	assert.Equal(t, 3, idx.Len())

	hits, err := idx.Query(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-1", hits[0].DocID)
	assert.Equal(t, "doc-3", hits[1].DocID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)

	// orthogonal vectors clamp to zero, not negative
	hits, err = idx.Query(ctx, []float64{0, 1}, 10)
	require.NoError(t, err)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestInMemoryIndex_Validation(t *testing.T) {
	ctx := context.Background()
	idx := NewInMemoryIndex()

	assert.Error(t, idx.Upsert(ctx, "", []float64{1}, "x"))
	assert.Error(t, idx.Upsert(ctx, "d", nil, "x"))
	_, err := idx.Query(ctx, nil, 5)
	assert.Error(t, err)
}

func TestEngine_Search_EndToEndWithHashedEmbeddings(t *testing.T) {
	ctx := context.Background()
	m := model.NewMockModel("m", "mock")
	idx := NewInMemoryIndex()

	for docID, text := range map[string]string{
		"doc-sales":  "quarterly sales revenue figures by region",
		"doc-policy": "employee vacation policy handbook",
	} {
		vec, err := m.Embed(ctx, text)
		require.NoError(t, err)
		require.NoError(t, idx.Upsert(ctx, docID, vec, text))
	}

	engine := NewEngine(m, idx)
	passages, err := engine.Search(ctx, testQuery("quarterly sales revenue figures by region"), 5, 0.0)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Equal(t, "doc-sales", passages[0].DocID)
}
