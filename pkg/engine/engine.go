// Package engine runs detection techniques and aggregates their results
// into reports. It supports sequential and concurrent execution, a
// short-circuiting "is anything detected" query, per-technique timeout
// budgets, and fault isolation: a technique that errors or panics is
// recorded as failed in its report slot and never terminates the batch.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/redpill/redpill/pkg/metrics"
	"github.com/redpill/redpill/pkg/technique"
)

// Engine executes detection techniques.
type Engine struct {
	registry    *technique.Registry
	logger      *slog.Logger
	timeout     time.Duration
	concurrency int
	pace        *rate.Limiter
	meter       *metrics.Meter
	tracer      trace.Tracer
	onResult    func(Entry)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the registry used by Run and DetectAny. Defaults to
// technique.DefaultRegistry.
func WithRegistry(r *technique.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTimeout sets the per-technique execution budget. A technique that
// exceeds it is recorded as failed with ErrTimeout. Zero means no budget.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithConcurrency sets the number of techniques executed in parallel by
// Run and RunAll. Values below 2 select sequential execution, which is
// the default: timing probes are sensitive to co-scheduled load.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithPace throttles technique starts. Useful when concurrent timing
// probes would otherwise perturb each other.
func WithPace(l *rate.Limiter) Option {
	return func(e *Engine) { e.pace = l }
}

// WithMeter records run and per-technique metrics.
func WithMeter(m *metrics.Meter) Option {
	return func(e *Engine) { e.meter = m }
}

// WithTracer records a span per run and per technique.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithOnResult registers a callback invoked after each technique
// completes. Use for real-time streaming to console or hooks. When
// concurrency is above 1 the callback runs on multiple goroutines and
// must be safe for concurrent use.
func WithOnResult(cb func(Entry)) Option {
	return func(e *Engine) { e.onResult = cb }
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: technique.DefaultRegistry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every technique in the registry snapshot, in
// registration order, and returns the full report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	techniques, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return e.RunAll(ctx, techniques), nil
}

// DetectAny executes techniques from the registry snapshot in order and
// stops at the first positive outcome.
func (e *Engine) DetectAny(ctx context.Context) (Verdict, error) {
	techniques, err := e.snapshot()
	if err != nil {
		return VerdictNotDetected, err
	}
	return e.Detect(ctx, techniques), nil
}

// RunAll executes every technique in the given order and returns a
// report with one entry per technique. A technique that errors, panics,
// or exceeds the timeout budget is recorded as failed in its slot; the
// batch always completes. Techniques not started because the context
// was cancelled are recorded as failed with the context error.
func (e *Engine) RunAll(ctx context.Context, techniques []technique.Technique) *Report {
	report := e.newReport(len(techniques))
	ctx, span := e.startRun(ctx, report, len(techniques))
	defer span.End()

	if e.concurrency > 1 {
		e.runConcurrent(ctx, techniques, report)
	} else {
		for i, t := range techniques {
			report.Entries[i] = e.execute(ctx, t)
		}
	}

	e.finishRun(report, span)
	return report
}

// Detect executes techniques in order, stopping at the first positive
// outcome. Failed outcomes never count as positive; if the list is
// exhausted with at least one failure and no detection, the verdict is
// inconclusive.
func (e *Engine) Detect(ctx context.Context, techniques []technique.Technique) Verdict {
	report := e.newReport(0)
	ctx, span := e.startRun(ctx, report, len(techniques))
	defer span.End()

	verdict := VerdictNotDetected
	for _, t := range techniques {
		entry := e.execute(ctx, t)
		report.Entries = append(report.Entries, entry)

		if entry.Outcome == technique.OutcomeDetected {
			verdict = VerdictDetected
			break
		}
		if entry.Outcome == technique.OutcomeFailed {
			verdict = VerdictInconclusive
		}
	}

	e.finishRun(report, span)
	span.SetAttributes(attribute.String("redpill.verdict", verdict.String()))
	return verdict
}

// snapshot returns the ordered registry snapshot, or
// ErrRegistryUnavailable when no usable registry was injected.
func (e *Engine) snapshot() ([]technique.Technique, error) {
	if e.registry == nil {
		return nil, technique.ErrRegistryUnavailable
	}
	return e.registry.Techniques(), nil
}

func (e *Engine) newReport(n int) *Report {
	return &Report{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		Entries:   make([]Entry, n),
	}
}

func (e *Engine) startRun(ctx context.Context, r *Report, n int) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background()) // no-op span
	}
	return e.tracer.Start(ctx, "redpill.run",
		trace.WithAttributes(
			attribute.String("redpill.run_id", r.ID),
			attribute.Int("redpill.techniques", n),
		))
}

func (e *Engine) finishRun(r *Report, span trace.Span) {
	r.Duration = time.Since(r.StartTime)
	if e.meter != nil {
		e.meter.ObserveRun(r.Duration, len(r.Entries))
	}
	detected, _, failed := r.Counts()
	e.logger.Debug("detection run complete",
		slog.String("run_id", r.ID),
		slog.Int("techniques", len(r.Entries)),
		slog.Int("detected", detected),
		slog.Int("failed", failed),
		slog.Duration("duration", r.Duration))
	span.SetAttributes(
		attribute.Int("redpill.detected", detected),
		attribute.Int("redpill.failed", failed),
	)
}

// runConcurrent executes techniques in parallel while preserving report
// order. Each technique still gets its own fault isolation.
func (e *Engine) runConcurrent(ctx context.Context, techniques []technique.Technique, report *Report) {
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i, t := range techniques {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t technique.Technique) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Entries[i] = e.execute(ctx, t)
		}(i, t)
	}
	wg.Wait()
}

// execute runs a single technique with pacing, tracing, timeout budget,
// and panic isolation.
func (e *Engine) execute(ctx context.Context, t technique.Technique) Entry {
	entry := Entry{
		Name:        t.Name(),
		Description: t.Description(),
	}

	if e.pace != nil {
		if err := e.pace.Wait(ctx); err != nil {
			return e.finishEntry(entry, technique.Failure(err), 0)
		}
	}

	if err := ctx.Err(); err != nil {
		return e.finishEntry(entry, technique.Failure(err), 0)
	}

	var span trace.Span
	if e.tracer != nil {
		_, span = e.tracer.Start(ctx, "redpill.technique",
			trace.WithAttributes(attribute.String("redpill.technique", t.Name())))
		defer span.End()
	}

	e.logger.Debug("running technique", slog.String("name", t.Name()))

	start := time.Now()
	result := e.invoke(ctx, t)
	elapsed := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.String("redpill.outcome", result.Outcome.String()))
		if result.Outcome == technique.OutcomeFailed && result.Err != nil {
			span.SetStatus(codes.Error, result.Err.Error())
		}
	}

	return e.finishEntry(entry, result, elapsed)
}

func (e *Engine) finishEntry(entry Entry, result technique.Result, elapsed time.Duration) Entry {
	entry.Outcome = result.Outcome
	entry.Elapsed = elapsed
	if result.Err != nil {
		entry.Reason = result.Err.Error()
	}

	switch result.Outcome {
	case technique.OutcomeDetected:
		e.logger.Info("hypervisor presence detected",
			slog.String("technique", entry.Name),
			slog.Duration("elapsed", elapsed))
	case technique.OutcomeFailed:
		e.logger.Warn("technique failed",
			slog.String("technique", entry.Name),
			slog.String("reason", entry.Reason))
	}

	if e.meter != nil {
		e.meter.ObserveTechnique(entry.Name, entry.Outcome.String(), elapsed)
	}
	if e.onResult != nil {
		e.onResult(entry)
	}
	return entry
}

// invoke calls the technique with panic recovery and enforces the
// timeout budget. The technique call is opaque and possibly blocking;
// on timeout the goroutine is abandoned (cooperative cancellation of an
// in-flight technique is best-effort).
func (e *Engine) invoke(ctx context.Context, t technique.Technique) technique.Result {
	if e.timeout <= 0 && ctx.Done() == nil {
		return safeExecute(t)
	}

	ch := make(chan technique.Result, 1)
	go func() {
		ch <- safeExecute(t)
	}()

	var timeoutC <-chan time.Time
	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case result := <-ch:
		return result
	case <-timeoutC:
		return technique.Failure(fmt.Errorf("%w after %s", ErrTimeout, e.timeout))
	case <-ctx.Done():
		return technique.Failure(ctx.Err())
	}
}

// safeExecute converts a panic inside a technique into a failed result.
func safeExecute(t technique.Technique) (result technique.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = technique.Failuref("technique panicked: %v", r)
		}
	}()
	return t.Execute()
}
