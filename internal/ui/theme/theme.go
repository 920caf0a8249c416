// Package theme holds the terminal styles used by qadigest's commands.
package theme

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Table cells
var (
	HeaderCell = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	Cell = lipgloss.NewStyle().
		Padding(0, 1)
)

// State returns the style for a set or delivery state name.
func State(state string) lipgloss.Style {
	switch state {
	case "committed", "delivered", "ok", "ready":
		return Good
	case "paused", "selected", "dry-run":
		return Warn
	case "failed", "invalid":
		return Bad
	default:
		return lipgloss.NewStyle()
	}
}

// Table builds a bordered table with styled headers.
func Table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderCell
			}
			return Cell
		})
}
