package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorBase    = lipgloss.Color("#1e1e2e")
	colorSurface = lipgloss.Color("#45475a")
	colorText    = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#a6adc8")
	colorAccent  = lipgloss.Color("#74c7ec")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorRed     = lipgloss.Color("#f38ba8")
	colorYellow  = lipgloss.Color("#f9e2af")
	colorPurple  = lipgloss.Color("#cba6f7")

	titleStyle    = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	headingStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle    = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(colorPurple)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(0, 1)

	alertStyle = cardStyle.
			BorderForeground(colorYellow).
			Foreground(colorYellow)

	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorBase).Background(colorAccent).Bold(true).Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	failureStyle = lipgloss.NewStyle().Foreground(colorRed)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)
