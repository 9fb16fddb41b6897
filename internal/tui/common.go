package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/focusboard/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewProjects
	viewTasks
	viewCalendar
	viewStats
	viewSettings
)

var viewNames = []string{"Dashboard", "Projects", "Tasks", "Calendar", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// mutatedMsg is sent after a successful write so every view re-derives
// its data.
type mutatedMsg struct {
	status string
}

// storeChangedMsg reports a key rewritten by another process.
type storeChangedMsg struct {
	key string
}

type exportDoneMsg struct {
	path string
}

type focusStoppedMsg struct {
	minutes int
}

// --- Commands ---

func mutated(format string, args ...any) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return mutatedMsg{status: text} }
}

func failed(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: describe(err), isError: true} }
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// waitForChange blocks on the store's change feed and returns nil once the
// subscription is closed.
func waitForChange(ch <-chan store.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangedMsg{key: c.Key}
	}
}

// --- Helpers ---

func describe(err error) string {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Invalid " + ve.Error()
	case errors.Is(err, store.ErrNotFound):
		return "Not found: it may have been deleted elsewhere"
	}
	return fmt.Sprintf("Error: %v", err)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

// ago is t relative to now, such as "3 minutes ago".
func ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func clampCursor(cursor, n int) int {
	return max(0, min(cursor, n-1))
}

// cycle returns the item after cur in items, wrapping around.
func cycle[T comparable](items []T, cur T) T {
	for i, it := range items {
		if it == cur {
			return items[(i+1)%len(items)]
		}
	}
	return items[0]
}
