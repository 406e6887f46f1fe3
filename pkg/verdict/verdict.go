// Package verdict maps detection outcomes to semantic exit codes for
// CI and scripting integration.
//
// Exit codes:
//   - 0: No hypervisor presence detected
//   - 1: Hypervisor presence detected
//   - 2: Inconclusive (failures, no detections)
//   - 3: Invalid configuration
//   - 5: Run interrupted
package verdict

import (
	"github.com/redpill/redpill/pkg/engine"
)

// Code represents a semantic exit code.
type Code int

const (
	// Clean indicates every technique ran and none detected a hypervisor.
	Clean Code = 0
	// Detected indicates at least one technique detected a hypervisor.
	Detected Code = 1
	// Inconclusive indicates failures prevented a clean conclusion.
	Inconclusive Code = 2
	// Configuration indicates invalid configuration was provided.
	Configuration Code = 3
	// Interrupted indicates the run was interrupted (e.g. SIGINT).
	Interrupted Code = 5
)

// codeStrings maps exit codes to human-readable descriptions.
var codeStrings = map[Code]string{
	Clean:         "clean",
	Detected:      "detected",
	Inconclusive:  "inconclusive",
	Configuration: "invalid_configuration",
	Interrupted:   "interrupted",
}

// String returns a human-readable representation of the Code.
func (c Code) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return "unknown"
}

// Int returns the numeric exit code for os.Exit.
func (c Code) Int() int { return int(c) }

// FromVerdict maps an engine verdict to its exit code.
func FromVerdict(v engine.Verdict) Code {
	switch v {
	case engine.VerdictDetected:
		return Detected
	case engine.VerdictInconclusive:
		return Inconclusive
	default:
		return Clean
	}
}

// FromReport classifies a full report and returns its exit code.
func FromReport(r *engine.Report) Code {
	return FromVerdict(r.Verdict())
}
