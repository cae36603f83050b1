package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidQuery rejects empty or whitespace-only input before the state
// machine starts. No turn is recorded for an invalid query.
var ErrInvalidQuery = errors.New("query text is empty")

// ErrSessionNotFound is returned by session stores for operations that
// require an existing session.
var ErrSessionNotFound = errors.New("session not found")

// RetrievalUnavailableError signals that the embedding call or the
// nearest-neighbor index could not be reached. The orchestrator treats it
// identically to an empty result set, forcing the clarification route; it is
// never fatal.
type RetrievalUnavailableError struct {
	Cause error
}

// Error implements the error interface.
func (e *RetrievalUnavailableError) Error() string {
	return fmt.Sprintf("retrieval unavailable: %v", e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *RetrievalUnavailableError) Unwrap() error { return e.Cause }

// IsRetrievalUnavailable reports whether err is (or wraps) a
// RetrievalUnavailableError.
func IsRetrievalUnavailable(err error) bool {
	var target *RetrievalUnavailableError
	return errors.As(err, &target)
}

// QueryExecutionError carries a failed structured-query execution. It is
// surfaced to the user inside the response text with no retry: the generated
// query itself may be malformed, and retrying without correction would repeat
// the failure.
type QueryExecutionError struct {
	Query string
	Cause error
}

// Error implements the error interface.
func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *QueryExecutionError) Unwrap() error { return e.Cause }

// IsTimeout reports whether err stems from a deadline expiry or cancellation
// of a bounded external call. Agents convert timeouts into degraded response
// text rather than propagating them.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
