package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan — headings
	colorSuccess = lipgloss.Color("#00E676") // Green — connected
	colorDanger  = lipgloss.Color("#FF5252") // Red — broken
	colorMuted   = lipgloss.Color("#636363") // Gray — disconnected/de-emphasized
	colorAccent  = lipgloss.Color("#FFD700") // Gold — attention
)

// Status icons for connection states.
const (
	iconConnected    = "✓"
	iconDisconnected = "·"
	iconBroken       = "✗"
)

var (
	styleHeading = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleConnected = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleDisconnected = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleBroken = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
)
