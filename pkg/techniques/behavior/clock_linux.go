package behavior

import (
	"time"

	"golang.org/x/sys/unix"
)

// monotonicNanos reads CLOCK_MONOTONIC_RAW, which is not subject to
// NTP slewing and so gives timing probes a steadier baseline than the
// runtime clock.
func monotonicNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return time.Now().UnixNano()
	}
	return ts.Nano()
}
