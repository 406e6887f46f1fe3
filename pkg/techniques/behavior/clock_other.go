//go:build !linux

package behavior

import "time"

var clockBase = time.Now()

// monotonicNanos returns elapsed nanoseconds on the runtime's
// monotonic clock.
func monotonicNanos() int64 {
	return int64(time.Since(clockBase))
}
