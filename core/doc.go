// Package core provides the foundational domain types and interfaces used by
// QueryMesh. It defines the core abstractions for:
//
//   - Queries, Turns and Responses (the units of a conversational exchange)
//   - Conversations (bounded, ordered per-session dialogue history)
//   - Route decisions (the closed set of answer strategies)
//   - Retrieved passages (transient, scored evidence spans)
//   - Pluggable collaborators: vector index, structured-query executor,
//     schema provider and session store
//
// The package intentionally keeps implementation concerns (persistence,
// inference providers, concrete agents) out of scope, exposing small
// interfaces to enable custom backends and deterministic test doubles.
package core
