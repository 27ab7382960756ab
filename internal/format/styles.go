package format

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
	colorWhite = lipgloss.Color("255")
)

var (
	// StyleTitle for chart and table headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text such as summaries and hints.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	styleNumber = lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1).Align(lipgloss.Right)
	styleBar    = lipgloss.NewStyle().Foreground(colorGreen)
	styleBorder = lipgloss.NewStyle().Foreground(colorDim)
)
