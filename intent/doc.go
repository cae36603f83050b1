// Package intent assigns a route label to an incoming query. Classification
// combines a deterministic keyword heuristic with a model delegate for
// ambiguous cases; candidate labels scoring within an epsilon band are
// tie-broken toward the safer route (document retrieval surfaces evidence
// rather than fabricating). When the inference service is unreachable the
// classifier degrades explicitly: it falls back to the heuristic alone and
// caps the decision's confidence below the clarification floor so the
// orchestrator forces a clarification turn.
package intent
