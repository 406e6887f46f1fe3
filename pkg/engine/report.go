package engine

import (
	"time"

	"github.com/redpill/redpill/pkg/technique"
)

// Entry is one technique's slot in a report.
type Entry struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Outcome     technique.Outcome `json:"outcome"`
	Reason      string            `json:"reason,omitempty"`
	Elapsed     time.Duration     `json:"elapsed_ns,format:nano"`
}

// Report is the ordered result set produced by running a batch of
// techniques. Entry order matches the order techniques were supplied.
type Report struct {
	ID        string        `json:"id"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration_ns,format:nano"`
	Entries   []Entry       `json:"entries"`
}

// Counts returns the number of detected, not-detected, and failed
// entries.
func (r *Report) Counts() (detected, notDetected, failed int) {
	for _, e := range r.Entries {
		switch e.Outcome {
		case technique.OutcomeDetected:
			detected++
		case technique.OutcomeNotDetected:
			notDetected++
		case technique.OutcomeFailed:
			failed++
		}
	}
	return detected, notDetected, failed
}

// Detected returns the entries with a positive outcome.
func (r *Report) Detected() []Entry {
	var hits []Entry
	for _, e := range r.Entries {
		if e.Outcome == technique.OutcomeDetected {
			hits = append(hits, e)
		}
	}
	return hits
}

// Failed returns the entries that could not complete.
func (r *Report) Failed() []Entry {
	var failures []Entry
	for _, e := range r.Entries {
		if e.Outcome == technique.OutcomeFailed {
			failures = append(failures, e)
		}
	}
	return failures
}

// Verdict classifies the report. Any positive entry wins; otherwise a
// report containing failures is inconclusive rather than clean.
func (r *Report) Verdict() Verdict {
	detected, _, failed := r.Counts()
	switch {
	case detected > 0:
		return VerdictDetected
	case failed > 0:
		return VerdictInconclusive
	default:
		return VerdictNotDetected
	}
}

// Verdict is the overall conclusion of a detection run.
type Verdict int

const (
	// VerdictNotDetected means every technique ran cleanly and none
	// found evidence of a hypervisor.
	VerdictNotDetected Verdict = iota
	// VerdictDetected means at least one technique found evidence.
	VerdictDetected
	// VerdictInconclusive means no technique found evidence but at
	// least one could not complete.
	VerdictInconclusive
)

// String returns a human-readable representation of the Verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictNotDetected:
		return "not_detected"
	case VerdictDetected:
		return "detected"
	case VerdictInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Detected reports whether the verdict is positive.
func (v Verdict) Detected() bool { return v == VerdictDetected }
