package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatEntry formats one technique result line.
// Output: [outcome] name (latency)  description
func FormatEntry(name, description, outcome string, elapsed time.Duration) string {
	var parts []string

	style := OutcomeStyle(outcome)
	parts = append(parts, BracketStyle.Render("[")+style.Render(outcome)+BracketStyle.Render("]"))
	parts = append(parts, NameStyle.Render(name))
	parts = append(parts, BracketStyle.Render("[")+DescriptionStyle.Render(formatLatency(elapsed))+BracketStyle.Render("]"))

	line := strings.Join(parts, " ")
	if description != "" {
		line += "\n      " + DescriptionStyle.Render(description)
	}
	return line
}

// FormatVerdict formats the overall conclusion banner.
func FormatVerdict(verdict string) string {
	switch verdict {
	case "detected":
		return DetectedStyle.Render(Icon("⚠ ", "[!] ") + "hypervisor presence detected")
	case "inconclusive":
		return FailedStyle.Render(Icon("? ", "[?] ") + "inconclusive: some techniques failed")
	default:
		return NotDetectedStyle.Render(Icon("✓ ", "[+] ") + "no hypervisor presence detected")
	}
}

// FormatSummary formats the run summary line.
func FormatSummary(detected, notDetected, failed int, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s detected, %s clean, %s failed in %s",
		TitleStyle.Render("summary:"),
		DetectedStyle.Render(fmt.Sprintf("%d", detected)),
		NotDetectedStyle.Render(fmt.Sprintf("%d", notDetected)),
		FailedStyle.Render(fmt.Sprintf("%d", failed)),
		formatLatency(elapsed))
}

func formatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
