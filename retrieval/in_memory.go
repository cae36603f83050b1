package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hupe1980/querymesh/core"
)

// indexEntry is the internal representation persisted by InMemoryIndex.
type indexEntry struct {
	vector []float64
	text   string
}

// InMemoryIndex is a process-local core.VectorIndex backed by a map and
// brute-force cosine similarity. It is safe for concurrent access and best
// suited for tests, examples and small document sets; swap in a vector
// database for production corpora.
//
// Scores are cosine similarity clamped to [0,1]: negative similarity carries
// no more relevance signal than orthogonality for this use.
type InMemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]indexEntry
}

// NewInMemoryIndex creates an empty in-memory index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{entries: make(map[string]indexEntry)}
}

// Upsert inserts or replaces a document vector.
func (idx *InMemoryIndex) Upsert(_ context.Context, docID string, vector []float64, text string) error {
	if docID == "" {
		return fmt.Errorf("docID must not be empty")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector must not be empty")
	}
	v := make([]float64, len(vector))
	copy(v, vector)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[docID] = indexEntry{vector: v, text: text}
	return nil
}

// Query returns the topK nearest candidates by cosine similarity, ordered by
// descending score with ties broken by ascending document identifier.
func (idx *InMemoryIndex) Query(_ context.Context, vector []float64, topK int) ([]core.IndexCandidate, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector must not be empty")
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := make([]core.IndexCandidate, 0, len(idx.entries))
	for docID, entry := range idx.entries {
		if len(entry.vector) != len(vector) {
			continue
		}
		score := cosine(vector, entry.vector)
		if score < 0 {
			score = 0
		}
		candidates = append(candidates, core.IndexCandidate{DocID: docID, Text: entry.text, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].DocID < candidates[j].DocID
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// Len returns the number of indexed documents.
func (idx *InMemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
