// Package report renders analyzer figures as styled terminal text.
package report

import "github.com/charmbracelet/lipgloss"

var (
	// AccentColor marks titles.
	AccentColor = lipgloss.Color("#3498db")
	// GoodColor marks healthy figures.
	GoodColor = lipgloss.Color("#2ecc71")
	// BadColor marks shortfalls.
	BadColor = lipgloss.Color("#e74c3c")
	// WarnColor marks partial data.
	WarnColor = lipgloss.Color("#f1c40f")
	// SubtleColor marks secondary text.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	GoodStyle   = lipgloss.NewStyle().Foreground(GoodColor)
	BadStyle    = lipgloss.NewStyle().Foreground(BadColor)
	WarnStyle   = lipgloss.NewStyle().Foreground(WarnColor)
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
)

// scenarioStyle colors a scenario name with its configured hex color.
func scenarioStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}
