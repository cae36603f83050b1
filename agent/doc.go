// Package agent contains the route agent implementations that answer
// classified queries in QueryMesh. The package focuses on three concerns:
//
//  1. Shared identity + prompt plumbing (BaseAgent)
//  2. Content agents that consult the model (RetrievalAgent, StructuredAgent,
//     GeneralAgent)
//  3. The clarification path, which never fabricates content and instead
//     asks targeted follow-up questions (ClarificationAgent)
//
// Design principles:
//   - Minimal hidden global state – explicit wiring via constructor options
//   - One agent per route label; the orchestrator dispatches exactly one
//   - Degraded-mode answers – model or backend failures surface as polite,
//     honest responses rather than errors where the contract allows it
//
// The package intentionally keeps vector search, SQL execution and model
// specifics in their respective packages to avoid cyclic deps.
package agent
