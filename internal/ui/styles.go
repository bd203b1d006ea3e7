// Package ui renders command results for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#6D28D9")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Destructive = lipgloss.Color("#e53935")
	Info        = lipgloss.Color("#2196F3")
	Muted       = lipgloss.Color("#8a8f98")
)

// Styles groups the lipgloss styles used by the console.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Panel   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(Muted),
		Success: lipgloss.NewStyle().Foreground(Success),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(Info),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1),
	}
}
