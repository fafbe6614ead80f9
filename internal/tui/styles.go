package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorPeach    lipgloss.Color = "#fab387"
	colorText     lipgloss.Color = "#cdd6f4"
	colorMuted    lipgloss.Color = "#a6adc8"
	colorBorder   lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)

	clockStyle       = lipgloss.NewStyle().Foreground(colorText)
	clockUrgentStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true).Blink(true)

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Width(7).
			Align(lipgloss.Center)
	emptyCellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface0).
			Width(7).
			Align(lipgloss.Center)

	keyHintStyle = lipgloss.NewStyle().Foreground(colorMuted)

	scoreStyle  = lipgloss.NewStyle().Foreground(colorText)
	frozenStyle = lipgloss.NewStyle().Foreground(colorTeal).Faint(true)
	winnerStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// Card colors by feature value; token marks by player index, cycled.
	cardColors  = []lipgloss.Color{colorRed, colorGreen, colorMauve}
	tokenColors = []lipgloss.Color{colorBlue, colorPeach, colorTeal, colorYellow}
)
