package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Title bar across the top of the pager
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// Status style for the pager position line
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))

	// Error style for rejected commands
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	// Help style for the key hint line
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)
