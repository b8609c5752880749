package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Dracula-ish accents on a dark background.
const (
	colorFg      = "#F8F8F2"
	colorMuted   = "#6272A4"
	colorBorder  = "#44475A"
	colorAccent  = "#8BE9FD"
	colorAccent2 = "#BD93F9"
	colorUser    = "#50FA7B"
	colorAssist  = "#8BE9FD"
	colorError   = "#FF5555"
	colorWarn    = "#F1FA8C"
	colorPrompt  = "#FF79C6"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorFg)).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color(colorBorder))

	headerMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorMuted))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorUser))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorAssist))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarn))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent2))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)).
			Italic(true)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorAccent2))

	activeMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorUser))
)
