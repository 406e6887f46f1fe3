// Package technique provides the plugin model for hypervisor-presence
// detection checks. Each check is a named Technique that produces a
// tri-state Result when executed; techniques register themselves with a
// shared registry and are run by the engine package.
package technique

import "fmt"

// Outcome represents the tri-state result of running a technique.
type Outcome int

const (
	// OutcomeNotDetected indicates the technique ran to completion and
	// found no evidence of a hypervisor.
	OutcomeNotDetected Outcome = iota
	// OutcomeDetected indicates positive evidence of a hypervisor.
	OutcomeDetected
	// OutcomeFailed indicates the technique could not complete (missing
	// instruction support, I/O error, timeout). Failed is a reportable
	// result, not a process-level error.
	OutcomeFailed
)

// String returns a human-readable representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotDetected:
		return "not_detected"
	case OutcomeDetected:
		return "detected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so outcomes serialize
// as their string form in JSON and YAML reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not_detected":
		*o = OutcomeNotDetected
	case "detected":
		*o = OutcomeDetected
	case "failed":
		*o = OutcomeFailed
	default:
		return fmt.Errorf("technique: unknown outcome %q", text)
	}
	return nil
}

// Result pairs an Outcome with the failure reason when the technique
// could not complete. Err is nil unless Outcome is OutcomeFailed.
type Result struct {
	Outcome Outcome
	Err     error
}

// Detected returns a positive result.
func Detected() Result { return Result{Outcome: OutcomeDetected} }

// NotDetected returns a clean negative result.
func NotDetected() Result { return Result{Outcome: OutcomeNotDetected} }

// Failure returns a failed result carrying the reason the technique
// could not complete.
func Failure(err error) Result { return Result{Outcome: OutcomeFailed, Err: err} }

// Failuref returns a failed result with a formatted reason.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Errorf(format, args...))
}

// Technique is the interface all detection plugins implement.
type Technique interface {
	// Name returns the unique identifier for this technique.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Execute runs the check. It must not panic for control flow;
	// inability to complete is reported as a Failed result.
	Execute() Result
}

// Func adapts a plain function into a Technique. Useful for tests and
// for checks small enough not to warrant a dedicated type.
type Func struct {
	name        string
	description string
	fn          func() Result
}

// New wraps fn into a Technique with the given identity.
func New(name, description string, fn func() Result) *Func {
	return &Func{name: name, description: description, fn: fn}
}

// Name returns the technique identifier.
func (f *Func) Name() string { return f.name }

// Description returns the technique description.
func (f *Func) Description() string { return f.description }

// Execute invokes the wrapped function.
func (f *Func) Execute() Result { return f.fn() }
