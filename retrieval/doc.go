// Package retrieval wraps the external nearest-neighbor index behind a
// similarity-thresholded search engine. Given a query it computes the query
// embedding, issues a kNN lookup, drops candidates under the threshold and
// returns at most topK passages in a deterministic order: descending score,
// ties broken by ascending document identifier.
//
// The package also ships InMemoryIndex, a cosine-similarity reference
// implementation of core.VectorIndex suited for tests and small corpora;
// production deployments plug a vector database behind the same interface.
package retrieval
