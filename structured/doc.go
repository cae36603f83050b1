// Package structured provides the relational backend for natural-language
// data questions: a SQLite-backed query executor, a schema dictionary used to
// ground SQL generation, statement validation that restricts execution to
// read-only SELECTs, and result-set helpers (summaries and chart suggestions)
// consumed by the structured-query agent.
package structured
