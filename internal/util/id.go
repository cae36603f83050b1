package util

import "github.com/google/uuid"

// NewID returns a new random identifier suitable for sessions and turns.
func NewID() string {
	return uuid.NewString()
}
