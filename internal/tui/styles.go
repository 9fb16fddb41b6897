package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusboard/internal/store"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#2563eb")
	colorSecondary = lipgloss.Color("#10b981")
	colorAccent    = lipgloss.Color("#f59e0b")
	colorMuted     = lipgloss.Color("#6b7280")
	colorSuccess   = lipgloss.Color("#10b981")
	colorWarning   = lipgloss.Color("#f59e0b")
	colorError     = lipgloss.Color("#ef4444")
	colorFg        = lipgloss.Color("#e5e7eb")
	colorSubtle    = lipgloss.Color("#1f2937")
	colorHighlight = lipgloss.Color("#60a5fa")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	focusPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSuccess).
			Padding(1, 2)

	// Timer
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess).
				Align(lipgloss.Center)

	timerPausedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWarning).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg).
			Background(colorSubtle).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Calendar
	todayCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Underline(true)

	otherMonthStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)
)

// dot renders a bullet in a project's color.
func dot(colorKey string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(store.ColorHex(colorKey))).Render("●")
}

func priorityStyle(p store.Priority) lipgloss.Style {
	switch p {
	case store.PriorityUrgent:
		return errorStyle
	case store.PriorityHigh:
		return warningStyle
	case store.PriorityLow:
		return mutedStyle
	}
	return highlightStyle
}

func statusStyle(s store.Status) lipgloss.Style {
	switch s {
	case store.StatusActive:
		return successStyle
	case store.StatusUrgent:
		return errorStyle
	case store.StatusPlanning:
		return warningStyle
	}
	return mutedStyle
}
