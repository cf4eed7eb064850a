package tui

import (
	"github.com/charmbracelet/lipgloss"

	"trendwatch/src/result"
)

// Styles for the history dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")) // Bright blue

	// Header style for the list columns
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("236")). // Dark gray
			Padding(0, 1)

	// Border/divider style for split view
	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	// Detail panel header style
	detailHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10")). // Bright green
				Padding(0, 1)

	// Secondary text in the detail panel
	detailDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Faint(true)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")) // Gold
)

// trendColors maps each trend to its badge color. Green for healthy,
// yellow for unstable, red for failing, gray for the excluded states.
var trendColors = map[result.Trend]lipgloss.Color{
	result.TrendFixed:         lipgloss.Color("#34A853"),
	result.TrendSuccess:       lipgloss.Color("#34A853"),
	result.TrendNowUnstable:   lipgloss.Color("#FBBC04"),
	result.TrendStillUnstable: lipgloss.Color("#FBBC04"),
	result.TrendUnstable:      lipgloss.Color("#FBBC04"),
	result.TrendStillFailing:  lipgloss.Color("#EA4335"),
	result.TrendFailure:       lipgloss.Color("#EA4335"),
	result.TrendAborted:       lipgloss.Color("#9AA0A6"),
	result.TrendNotBuilt:      lipgloss.Color("#9AA0A6"),
}

// TrendBadge renders a trend as a colored, fixed-width label.
func TrendBadge(trend result.Trend, width int) string {
	color, ok := trendColors[trend]
	if !ok {
		color = lipgloss.Color("#9AA0A6")
	}
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return style.Render(TruncateAndPad(trend.Description(), width, false))
}

// OutcomeLabel renders an outcome name dimmed to color by severity.
func OutcomeLabel(outcome result.Outcome, width int) string {
	var color lipgloss.Color
	switch outcome {
	case result.Success:
		color = lipgloss.Color("#34A853")
	case result.Unstable:
		color = lipgloss.Color("#FBBC04")
	case result.Failure:
		color = lipgloss.Color("#EA4335")
	default:
		color = lipgloss.Color("#9AA0A6")
	}
	return lipgloss.NewStyle().Foreground(color).Render(TruncateAndPad(outcome.String(), width, false))
}
