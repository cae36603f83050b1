package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/querymesh/core"
	"github.com/hupe1980/querymesh/logging"
	"github.com/hupe1980/querymesh/model"
)

// Options holds dependency + configuration overrides passed to NewEngine().
type Options struct {
	// Logger receives retrieval diagnostics.
	Logger logging.Logger
}

// Engine performs similarity-thresholded search against a vector index. It is
// stateless; every call embeds the query text afresh.
type Engine struct {
	model  model.Model
	index  core.VectorIndex
	logger logging.Logger
}

// NewEngine constructs an Engine with optional overrides.
func NewEngine(m model.Model, index core.VectorIndex, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{model: m, index: index, logger: opts.Logger}
}

// Search returns up to topK passages scoring at or above threshold, ordered
// by descending score with ties broken by ascending document identifier.
// Embedding or index failures surface as core.RetrievalUnavailableError; the
// orchestrator treats that identically to an empty result set.
func (e *Engine) Search(ctx context.Context, q core.Query, topK int, threshold float64) ([]core.RetrievedPassage, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1], got %v", threshold)
	}

	start := time.Now()

	vector, err := e.model.Embed(ctx, q.Text)
	if err != nil {
		unavailable := &core.RetrievalUnavailableError{Cause: fmt.Errorf("embed query: %w", err)}
		e.logger.Warn("retrieval embedding failed", "session_id", q.SessionID, "error", err)
		return nil, unavailable
	}

	candidates, err := e.index.Query(ctx, vector, topK)
	if err != nil {
		unavailable := &core.RetrievalUnavailableError{Cause: fmt.Errorf("index query: %w", err)}
		e.logger.Warn("retrieval index lookup failed", "session_id", q.SessionID, "error", err)
		return nil, unavailable
	}

	kept := make([]core.RetrievedPassage, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		kept = append(kept, core.RetrievedPassage{DocID: c.DocID, Text: c.Text, Score: c.Score})
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].DocID < kept[j].DocID
	})

	if len(kept) > topK {
		kept = kept[:topK]
	}
	for i := range kept {
		kept[i].Rank = i + 1
	}

	e.logger.Debug("retrieval completed",
		"session_id", q.SessionID, "candidates", len(candidates), "kept", len(kept), "duration", time.Since(start))

	return kept, nil
}
