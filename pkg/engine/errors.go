package engine

import "errors"

// Sentinel errors for engine failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrTimeout indicates a technique exceeded its execution budget.
	// It appears wrapped in the failure reason of the affected entry.
	ErrTimeout = errors.New("engine: technique timed out")
)
