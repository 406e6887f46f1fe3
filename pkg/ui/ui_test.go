package ui

import (
	"strings"
	"testing"
	"time"
)

func TestFormatEntry(t *testing.T) {
	DisableColor()

	line := FormatEntry("vmid", "vendor check", "detected", 42*time.Microsecond)
	for _, want := range []string{"vmid", "detected", "42µs", "vendor check"} {
		if !strings.Contains(line, want) {
			t.Errorf("entry line missing %q: %q", want, line)
		}
	}
}

func TestFormatVerdict(t *testing.T) {
	DisableColor()

	cases := map[string]string{
		"detected":     "hypervisor presence detected",
		"inconclusive": "inconclusive",
		"not_detected": "no hypervisor presence detected",
	}
	for verdict, want := range cases {
		if got := FormatVerdict(verdict); !strings.Contains(got, want) {
			t.Errorf("FormatVerdict(%q) = %q", verdict, got)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	DisableColor()

	line := FormatSummary(1, 5, 2, 130*time.Millisecond)
	for _, want := range []string{"1", "5", "2", "130ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("summary missing %q: %q", want, line)
		}
	}
}

func TestFormatLatency(t *testing.T) {
	cases := map[time.Duration]string{
		500 * time.Nanosecond:   "0µs",
		42 * time.Microsecond:   "42µs",
		7 * time.Millisecond:    "7ms",
		1500 * time.Millisecond: "1.50s",
	}
	for d, want := range cases {
		if got := formatLatency(d); got != want {
			t.Errorf("formatLatency(%v) = %q, want %q", d, got, want)
		}
	}
}
