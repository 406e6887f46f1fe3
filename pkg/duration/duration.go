// Package duration provides canonical time constants for the codebase.
//
// Use these instead of hardcoded time.Duration literals so timeout
// policy lives in one place:
//
//	engine.New(engine.WithTimeout(duration.TechniqueBudget))
//	ctx, cancel := context.WithTimeout(ctx, duration.ScanBudget)
package duration

import "time"

const (
	// TechniqueBudget is the default per-technique execution budget.
	// Timing probes sleep or busy-wait, so this is generous relative
	// to the signature checks that complete in microseconds.
	TechniqueBudget = 2 * time.Second

	// ScanBudget bounds a full run of every registered technique.
	ScanBudget = 30 * time.Second

	// ProbeSleep is the sleep interval used by clock-skew probes.
	ProbeSleep = 10 * time.Millisecond

	// ShutdownTimeout is the grace period for flushing telemetry and
	// metrics on exit.
	ShutdownTimeout = 5 * time.Second

	// OTLPConnect is the timeout for establishing the OTLP exporter
	// connection.
	OTLPConnect = 10 * time.Second

	// MetricsRead and MetricsWrite bound request handling on the
	// Prometheus scrape server.
	MetricsRead  = 5 * time.Second
	MetricsWrite = 10 * time.Second
)
