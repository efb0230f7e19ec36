// Package ui holds the terminal styles shared by stage reports and the
// interactive reviewer.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("39")  // blue
	good    = lipgloss.Color("76")  // green
	caution = lipgloss.Color("214") // orange
	muted   = lipgloss.Color("240") // gray
)

var (
	Header = lipgloss.NewStyle().Bold(true).Foreground(accent)
	OK     = lipgloss.NewStyle().Foreground(good)
	Warn   = lipgloss.NewStyle().Foreground(caution)
	Muted  = lipgloss.NewStyle().Foreground(muted)

	// Card frames one pending summary during review.
	Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)

	Label = lipgloss.NewStyle().Bold(true).Foreground(accent)
)
