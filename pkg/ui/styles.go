// Package ui renders detection results for terminals using lipgloss
// styles with capability-aware fallbacks.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette. Detection of a hypervisor is the notable event, so it
// renders in the warning register; a clean negative renders green.
var (
	Primary = lipgloss.Color("#7D56F4") // Purple
	Muted   = lipgloss.Color("#6B7280") // Gray

	DetectedColor    = lipgloss.Color("#FF6B6B") // Red
	NotDetectedColor = lipgloss.Color("#00D26A") // Green
	FailedColor      = lipgloss.Color("#FFB800") // Amber
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	NameStyle = lipgloss.NewStyle().
			Bold(true)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(Muted)

	DetectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(DetectedColor)

	NotDetectedStyle = lipgloss.NewStyle().
				Foreground(NotDetectedColor)

	FailedStyle = lipgloss.NewStyle().
			Foreground(FailedColor)
)

// OutcomeStyle returns the style for an outcome string.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "detected":
		return DetectedStyle
	case "failed":
		return FailedStyle
	default:
		return NotDetectedStyle
	}
}

// DisableColor forces plain output regardless of terminal capability.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorCapable reports whether the environment advertises any color
// support.
func ColorCapable() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}
