package view

import "github.com/charmbracelet/lipgloss"

var (
	colorOrange  = lipgloss.Color("#F28C28")
	colorGreen   = lipgloss.Color("78")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("196")
	colorTeal    = lipgloss.Color("73")
	colorGray    = lipgloss.Color("242")
	colorDimGray = lipgloss.Color("238")
	colorBody    = lipgloss.Color("252")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Bold(true).
			Underline(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)

	sqlBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Foreground(colorGreen).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	summaryStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	borderStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true)

	bodyCellStyle = lipgloss.NewStyle().
			Foreground(colorBody)
)
