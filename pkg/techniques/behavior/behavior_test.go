package behavior

import (
	"testing"
	"time"

	"github.com/redpill/redpill/pkg/technique"
)

func TestMonotonicClockAdvances(t *testing.T) {
	start := monotonicNanos()
	time.Sleep(time.Millisecond)
	if monotonicNanos() <= start {
		t.Error("monotonic clock did not advance across a sleep")
	}
}

func TestSleepSkewCompletes(t *testing.T) {
	// The probe is a heuristic; in CI we only require that it runs to
	// a conclusive tri-state result quickly.
	probe := &SleepSkew{Samples: 2, Interval: time.Millisecond}
	result := probe.Execute()
	if result.Outcome == technique.OutcomeFailed {
		t.Errorf("probe failed on a live clock: %v", result.Err)
	}
}

func TestTimerResolutionCompletes(t *testing.T) {
	probe := &TimerResolution{Iterations: 1000}
	result := probe.Execute()
	if result.Outcome == technique.OutcomeFailed {
		t.Errorf("probe failed on a live clock: %v", result.Err)
	}
}

func TestIdentity(t *testing.T) {
	skew := &SleepSkew{}
	if skew.Name() != "sleep_skew" || skew.Description() == "" {
		t.Errorf("sleep_skew identity: %q %q", skew.Name(), skew.Description())
	}

	res := &TimerResolution{}
	if res.Name() != "timer_resolution" || res.Description() == "" {
		t.Errorf("timer_resolution identity: %q %q", res.Name(), res.Description())
	}
}

func TestPackRegistered(t *testing.T) {
	for _, name := range []string{"sleep_skew", "timer_resolution"} {
		if !technique.DefaultRegistry.IsRegistered(name) {
			t.Errorf("technique %q not registered on import", name)
		}
	}
}
