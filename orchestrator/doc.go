// Package orchestrator sequences a query through the routing state machine:
// classification, the clarification policy check, dispatch to exactly one
// route agent, and conversation recording. It is the only component that
// mutates conversation state; everything else receives read-only snapshots.
package orchestrator
