package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusboard/internal/insight"
	"github.com/sadopc/focusboard/internal/store"
)

type dashboardModel struct {
	ws     *store.Workspace
	now    func() time.Time
	timer  focusTimer
	width  int
	height int

	// focusTarget is the weekly focus goal in minutes.
	focusTarget int

	projects []store.Project
	today    store.DailyStat
	week     []store.DailyStat
	trend    []insight.DayCount
	gauges   insight.Gauges
	focus    insight.Focus
	hasFocus bool

	dailyBar   progress.Model
	focusBar   progress.Model
	projectBar progress.Model
	chart      barchart.Model
}

func newDashboardModel(ws *store.Workspace, now func() time.Time, focusTarget int) dashboardModel {
	return dashboardModel{
		ws:          ws,
		now:         now,
		timer:       newFocusTimer(now),
		focusTarget: focusTarget,
		dailyBar:    progress.New(progress.WithSolidFill(string(colorPrimary))),
		focusBar:    progress.New(progress.WithSolidFill(string(colorSecondary))),
		projectBar:  progress.New(progress.WithSolidFill(string(colorAccent))),
		chart:       barchart.New(40, 8),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	barWidth := max(10, (w-16)/3-4)
	d.dailyBar.Width = barWidth
	d.focusBar.Width = barWidth
	d.projectBar.Width = barWidth
	d.buildChart()
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.elapsed()
}

type dashboardDataMsg struct {
	projects []store.Project
	today    store.DailyStat
	week     []store.DailyStat
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{
			projects: d.ws.Projects.All(),
			today:    d.ws.Stats.Today(),
			week:     d.ws.Stats.Week(),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.projects = msg.projects
		d.today = msg.today
		d.week = msg.week
		d.trend = insight.WeeklyTrend(d.projects, d.now())
		d.gauges = insight.DashboardGauges(d.today, d.week, d.projects, d.focusTarget)
		d.focus, d.hasFocus = insight.NextFocus(d.projects)
		d.buildChart()
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if !d.hasFocus {
				return d, func() tea.Msg {
					return statusMsg{text: "Nothing to focus on. Add tasks to a project first.", isError: true}
				}
			}
			d.timer.start(d.focus)
			return d, notice("Focus started")

		case key.Matches(msg, keys.Stop):
			return d.stopFocus()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil

		case key.Matches(msg, keys.Done):
			return d.completeFocus()
		}
	}
	return d, nil
}

func (d dashboardModel) stopFocus() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	elapsed := d.timer.stop()
	minutes := int(elapsed / time.Minute)
	d.ws.FinishFocus(elapsed)
	if minutes == 0 {
		return d, notice("Focus stopped: under a minute, nothing booked")
	}
	return d, tea.Batch(
		mutated("Focus stopped: %s booked", formatMinutes(minutes)),
		func() tea.Msg { return focusStoppedMsg{minutes: minutes} },
	)
}

// completeFocus closes the running session and marks the timed task done.
// Without a session it completes the suggested task. A task finished
// elsewhere in the meantime stays done.
func (d dashboardModel) completeFocus() (dashboardModel, tea.Cmd) {
	projectID, taskID, text := d.focus.Project.ID, d.focus.Task.ID, d.focus.Task.Text
	switch {
	case d.timer.running():
		projectID, taskID, text = d.timer.projectID, d.timer.taskID, d.timer.taskText
	case !d.hasFocus:
		return d, nil
	}

	var cmds []tea.Cmd
	if d.timer.running() {
		var cmd tea.Cmd
		d, cmd = d.stopFocus()
		cmds = append(cmds, cmd)
	}
	_, changed, err := d.ws.CompleteProjectTask(projectID, taskID)
	switch {
	case err != nil:
		cmds = append(cmds, failed(err))
	case !changed:
		cmds = append(cmds, mutated("%q was already done", text))
	default:
		cmds = append(cmds, mutated("Completed %q", text))
	}
	return d, tea.Batch(cmds...)
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(20, d.width-8)
	chartHeight := 8
	if d.height > 36 {
		chartHeight = 12
	}
	d.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(d.trend))
	for _, day := range d.trend {
		color := colorPrimary
		if day.IsToday {
			color = colorSuccess
		}
		bars = append(bars, barchart.BarData{
			Label: day.Label(),
			Values: []barchart.BarValue{{
				Name:  day.Label(),
				Value: float64(day.Count),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderGauges(contentWidth),
		d.renderFocusPanel(contentWidth),
		d.renderTrendPanel(contentWidth),
	)
}

func (d dashboardModel) renderGauges(w int) string {
	focusMinutes := 0
	for _, day := range d.week {
		focusMinutes += day.FocusTime
	}
	active := 0
	for _, p := range d.projects {
		if p.IsActive() {
			active++
		}
	}

	gauge := func(title string, bar progress.Model, pct int, sub string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			bar.ViewAs(float64(pct)/100),
			mutedStyle.Render(sub),
		)
	}
	cells := []string{
		gauge("Daily goal", d.dailyBar, d.gauges.DailyGoal,
			fmt.Sprintf("%d/%d tasks done", d.today.TasksCompleted, d.today.TasksTotal)),
		gauge("Weekly focus", d.focusBar, d.gauges.WeeklyFocus,
			fmt.Sprintf("%s of %s", formatMinutes(focusMinutes), formatMinutes(d.focusTarget))),
		gauge("Active projects", d.projectBar, d.gauges.ActiveProject,
			fmt.Sprintf("%d of %d projects", active, len(d.projects))),
	}
	for i := range cells[:len(cells)-1] {
		cells[i] = lipgloss.NewStyle().PaddingRight(4).Render(cells[i])
	}

	header := fmt.Sprintf("%s  %s",
		titleStyle.Render("Today"),
		mutedStyle.Render(fmt.Sprintf("overall completion %d%%", insight.CompletionRate(d.projects))))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	))
}

func (d dashboardModel) renderFocusPanel(w int) string {
	if !d.hasFocus && !d.timer.running() {
		content := lipgloss.JoinVertical(lipgloss.Left,
			badgeStyle.Render("UP NEXT"),
			"",
			mutedStyle.Render("All caught up. Add tasks to a project to get a focus suggestion."),
		)
		return panelStyle.Width(w).Render(content)
	}

	if d.timer.running() {
		timeStr := formatDuration(d.timer.elapsed())
		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  IN PROGRESS")
		}
		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(d.timer.taskText)+mutedStyle.Render(" / "+d.timer.projectName),
			mutedStyle.Render("space: pause  x: stop  c: complete"),
		)
		return focusPanelStyle.Width(w).Render(content)
	}

	t := d.focus.Task
	var meta []string
	if t.EstimatedTime != "" {
		meta = append(meta, "planned "+t.EstimatedTime)
	}
	if t.DueDate != "" {
		meta = append(meta, "due "+t.DueDate)
	}
	if t.Priority != "" {
		meta = append(meta, priorityStyle(t.Priority).Render(t.Priority.Label()))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		badgeStyle.Render("UP NEXT"),
		"",
		titleStyle.Render(t.Text),
		fmt.Sprintf("%s %s", dot(d.focus.Project.Color), mutedStyle.Render("Project: "+d.focus.Project.Name)),
		mutedStyle.Render(strings.Join(meta, "  ")),
		"",
		timerStyle.Render("00:00:00"),
		mutedStyle.Render("s: start focus  c: complete"),
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTrendPanel(w int) string {
	total := insight.WeekTotal(d.trend)
	header := fmt.Sprintf("%s  %s",
		titleStyle.Render("This week"),
		highlightStyle.Render(fmt.Sprintf("%d tasks completed", total)))
	if total == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, mutedStyle.Render("No completed tasks yet this week"),
		))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", d.chart.View(),
	))
}
