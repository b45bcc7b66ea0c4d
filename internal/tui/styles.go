package tui

import "github.com/charmbracelet/lipgloss"

// Terminal theme colors (ANSI 0-15)
// These adapt to the user's terminal color scheme
var (
	colorBlack   = lipgloss.Color("0")
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorWhite   = lipgloss.Color("7")

	colorBrightBlack = lipgloss.Color("8")

	// Semantic aliases
	primaryColor   = colorYellow
	successColor   = colorGreen
	dangerColor    = colorRed
	pendingColor   = colorYellow
	highlightColor = colorMagenta
	fgColor        = colorWhite

	// Status bar (no background - uses terminal default)
	statusBarStyle = lipgloss.NewStyle().
			Foreground(fgColor)

	// Job list styles - selection uses bright black background
	selectionBg = colorBrightBlack

	jobSelectedBgStyle = lipgloss.NewStyle().
				Background(selectionBg)

	jobRunningStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	jobRunningSelectedStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Background(selectionBg).
				Bold(true)

	jobSuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	jobSuccessSelectedStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Background(selectionBg)

	jobFailedStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	jobFailedSelectedStyle = lipgloss.NewStyle().
				Foreground(dangerColor).
				Background(selectionBg)

	jobStoppedStyle = lipgloss.NewStyle().
			Foreground(colorBrightBlack)

	jobStoppedSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(selectionBg)

	jobPendingStyle = lipgloss.NewStyle().
			Foreground(pendingColor)

	jobPendingSelectedStyle = lipgloss.NewStyle().
				Foreground(pendingColor).
				Background(selectionBg)

	jobIDStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	jobIDSelectedStyle = lipgloss.NewStyle().
				Foreground(highlightColor).
				Background(selectionBg)

	jobNameSelectedStyle = lipgloss.NewStyle().
				Background(selectionBg)

	jobTimeStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	jobTimeSelectedStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Background(selectionBg)

	// Modal/dialog styles
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	// Error/success messages
	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorBrightBlack)

	// Help key style
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(fgColor)
)
