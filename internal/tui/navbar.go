package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// NotesHeightPct is the share of the body height given to the notes pane.
const NotesHeightPct = 35

func renderNavbar(source, status, endpoint string, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	sourceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	endpointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	left := " " + titleStyle.Render("readless") + "  " + sourceStyle.Render("source: "+source)
	if status != "" {
		left += "   " + statusStyle.Render(status)
	}

	right := endpointStyle.Render(endpoint)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap)

	return left + padding.Render("") + right + " "
}
