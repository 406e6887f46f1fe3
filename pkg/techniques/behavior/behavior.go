// Package behavior provides behavior-based detection techniques:
// timing probes that observe how the environment responds to sleeps
// and clock reads. Virtualized timers are coarser and less faithful
// than bare-metal ones. Techniques self-register with the default
// registry on import.
package behavior

import (
	"log/slog"
	"time"

	"github.com/redpill/redpill/pkg/duration"
	"github.com/redpill/redpill/pkg/technique"
)

func init() {
	register(
		&SleepSkew{},
		&TimerResolution{},
	)
}

func register(techniques ...technique.Technique) {
	for _, t := range techniques {
		if err := technique.Register(t); err != nil {
			slog.Warn("failed to register technique",
				slog.String("name", t.Name()),
				slog.String("error", err.Error()))
		}
	}
}

// =============================================================================
// SLEEP SKEW
// =============================================================================

// SleepSkew compares requested sleep intervals against observed elapsed
// time. Hypervisors that descheduled the vCPU or emulate timers cheaply
// overshoot far beyond normal scheduler jitter. The threshold is
// deliberately conservative: a loaded bare-metal host overshoots too,
// but not by an order of magnitude on every sample.
type SleepSkew struct {
	// Samples overrides the number of probe sleeps (default 5).
	Samples int
	// Interval overrides the per-sample sleep (default duration.ProbeSleep).
	Interval time.Duration
}

// skewRatio is the minimum observed/requested ratio that every sample
// must exceed before the probe reports a detection.
const skewRatio = 8.0

// Name returns the technique identifier.
func (t *SleepSkew) Name() string { return "sleep_skew" }

// Description returns the technique description.
func (t *SleepSkew) Description() string {
	return "Compare requested sleep intervals against observed monotonic elapsed time"
}

// Execute runs the probe.
func (t *SleepSkew) Execute() technique.Result {
	samples := t.Samples
	if samples <= 0 {
		samples = 5
	}
	interval := t.Interval
	if interval <= 0 {
		interval = duration.ProbeSleep
	}

	overshoots := 0
	for i := 0; i < samples; i++ {
		start := monotonicNanos()
		time.Sleep(interval)
		elapsed := monotonicNanos() - start
		if elapsed <= 0 {
			return technique.Failuref("sleep_skew: non-monotonic clock reading")
		}
		if float64(elapsed) > skewRatio*float64(interval.Nanoseconds()) {
			overshoots++
		}
	}

	// A single outlier is scheduler noise; every sample overshooting
	// an order of magnitude is not.
	if overshoots == samples {
		return technique.Detected()
	}
	return technique.NotDetected()
}

// =============================================================================
// TIMER RESOLUTION
// =============================================================================

// TimerResolution measures the smallest observable step of the
// monotonic clock. Bare-metal clocks step in tens of nanoseconds;
// coarse virtualized timers step in microseconds.
type TimerResolution struct {
	// Iterations overrides the sampling loop count (default 10000).
	Iterations int
}

// coarseStepNanos is the smallest clock step considered evidence of a
// virtualized timer.
const coarseStepNanos = 5000

// Name returns the technique identifier.
func (t *TimerResolution) Name() string { return "timer_resolution" }

// Description returns the technique description.
func (t *TimerResolution) Description() string {
	return "Measure the smallest observable monotonic clock step"
}

// Execute runs the probe.
func (t *TimerResolution) Execute() technique.Result {
	iterations := t.Iterations
	if iterations <= 0 {
		iterations = 10000
	}

	minStep := int64(-1)
	prev := monotonicNanos()
	for i := 0; i < iterations; i++ {
		now := monotonicNanos()
		step := now - prev
		prev = now
		if step <= 0 {
			continue
		}
		if minStep < 0 || step < minStep {
			minStep = step
		}
	}

	if minStep < 0 {
		return technique.Failuref("timer_resolution: clock never advanced over %d reads", iterations)
	}
	if minStep >= coarseStepNanos {
		return technique.Detected()
	}
	return technique.NotDetected()
}
