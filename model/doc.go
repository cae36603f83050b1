// Package model defines the inference-service abstraction consumed by the
// classifier, the retrieval engine and the route agents: bounded text
// generation plus embedding computation behind one small interface. It also
// provides a deterministic MockModel for tests and the reasoning-trace filter
// applied to all generated text before it becomes part of a response.
//
// Concrete providers live in subpackages (model/openai, model/anthropic) and
// are selected at wiring time; components depend only on model.Model so tests
// can substitute a deterministic stub.
package model
