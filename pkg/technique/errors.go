package technique

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrNilTechnique indicates a nil technique was passed to Register.
	ErrNilTechnique = errors.New("technique: nil technique")

	// ErrEmptyName indicates a technique with an empty name was passed
	// to Register.
	ErrEmptyName = errors.New("technique: empty name")

	// ErrRegistryUnavailable indicates the registry could not be safely
	// used (an injected registry was nil or torn down). Callers should
	// skip detection rather than abort.
	ErrRegistryUnavailable = errors.New("technique: registry unavailable")
)

// DuplicateError is returned by Register when a technique with the same
// name is already present.
type DuplicateError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("technique %q already registered", e.Name)
}
