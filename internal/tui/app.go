package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/focusboard/internal/config"
	"github.com/sadopc/focusboard/internal/export"
	"github.com/sadopc/focusboard/internal/store"
)

// Options configures the App.
type Options struct {
	Config     config.Config
	ConfigPath string
	// ExportDir receives exports; the home directory when empty.
	ExportDir string
	// Changes is a store subscription. Each change refreshes every view.
	Changes <-chan store.Change
}

// App is the root Bubble Tea model.
type App struct {
	ws     *store.Workspace
	now    func() time.Time
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string
	changes       <-chan store.Change

	dashboard dashboardModel
	projects  projectsModel
	tasks     tasksModel
	calendar  calendarModel
	stats     statsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(ws *store.Workspace, opts Options) App {
	h := help.New()
	h.ShowAll = false

	now := time.Now
	focusTarget := opts.Config.FocusMinutes
	return App{
		ws:         ws,
		now:        now,
		activeView: viewDashboard,
		exportDir:  opts.ExportDir,
		changes:    opts.Changes,
		dashboard:  newDashboardModel(ws, now, focusTarget),
		projects:   newProjectsModel(ws, now),
		tasks:      newTasksModel(ws, now),
		calendar:   newCalendarModel(ws, now),
		stats:      newStatsModel(ws, now),
		settings:   newSettingsModel(ws, opts.Config, opts.ConfigPath),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.refreshAll(),
		tickCmd(),
		waitForChange(a.changes),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewProjects)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewCalendar)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Always route ticks to the focus timer
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			log.Warn("action failed", "view", viewNames[a.activeView], "msg", msg.text)
		}
		return a, nil

	case mutatedMsg:
		a.status = msg.status
		a.statusErr = false
		return a, a.refreshAll()

	case storeChangedMsg:
		log.Debug("store changed elsewhere", "key", msg.key)
		return a, tea.Batch(a.refreshAll(), waitForChange(a.changes))

	case focusStoppedMsg:
		log.Info("focus session booked", "minutes", msg.minutes)
		return a, nil

	case configSavedMsg:
		a.settings, _ = a.settings.update(msg)
		a.dashboard.focusTarget = msg.cfg.FocusMinutes
		a.status = "Settings saved"
		if msg.cleaned > 0 {
			a.status += fmt.Sprintf(", %d old days removed", msg.cleaned)
		}
		a.statusErr = false
		return a, a.refreshAll()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil

	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	case projectsDataMsg:
		a.projects, _ = a.projects.update(msg)
		return a, nil
	case tasksDataMsg:
		a.tasks, _ = a.tasks.update(msg)
		return a, nil
	case calendarDataMsg:
		a.calendar, _ = a.calendar.update(msg)
		return a, nil
	case statsDataMsg:
		a.stats, _ = a.stats.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

// quit books a running focus session before leaving.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.dashboard.isRunning() {
		a.ws.FinishFocus(a.dashboard.timer.stop())
	}
	return a, tea.Quit
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewProjects:
		return a.projects.capturing()
	case viewTasks:
		return a.tasks.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// refreshAll re-derives every view from the repositories.
func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.dashboard.refresh(),
		a.projects.refresh(),
		a.tasks.refresh(),
		a.calendar.refresh(),
		a.stats.refresh(),
	)
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.refresh()
	case viewProjects:
		return a.projects.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	case viewStats:
		return a.stats.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewProjects:
		content = a.projects.view()
	case viewTasks:
		content = a.tasks.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusboard")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Focus timer indicator in footer
	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	return func() tea.Msg {
		dir := a.exportDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		path := filepath.Join(dir, export.FileName(format, a.now()))

		snap := export.Snapshot{
			Projects: a.ws.Projects.All(),
			Tasks:    a.ws.Tasks.All(),
			Stats:    a.ws.Stats.All(),
		}
		if err := export.Write(format, snap, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s export error: %v", strings.ToUpper(format), err), isError: true}
		}
		log.Info("exported", "format", format, "path", path)
		return exportDoneMsg{path: path}
	}
}
