// ABOUTME: Lipgloss styles for boxed CLI output.
// ABOUTME: Renders the range summary as a row of KPI cards.
package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/trainload/internal/query"
)

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorSubtle  = lipgloss.Color("#414868")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2).
			Width(18)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

func card(label, value string) string {
	return cardStyle.Render(cardValueStyle.Render(value) + "\n" + cardLabelStyle.Render(label))
}

// renderSummary lays out distance, sessions, effort and stress side by side.
func renderSummary(sum query.Summary) string {
	title := cardLabelStyle.Render(fmt.Sprintf("%s .. %s", sum.From, sum.To))
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("distance", fmt.Sprintf("%.1f km", sum.DistanceKm)),
		card("sessions", fmt.Sprintf("%d", sum.Sessions)),
		card("effort", fmt.Sprintf("%.0f min", sum.EffortMinutes)),
		card("stress", fmt.Sprintf("%.1f", sum.StressScore)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, cards)
}
