package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusboard/internal/dates"
	"github.com/sadopc/focusboard/internal/insight"
	"github.com/sadopc/focusboard/internal/store"
)

type statsMode int

const (
	statsLastDays statsMode = iota
	statsWeek
)

// trendDays is the window of the rolling view and of the trend.
const trendDays = 7

type statsModel struct {
	ws     *store.Workspace
	now    func() time.Time
	width  int
	height int

	mode     statsMode
	week     []store.DailyStat
	lastDays []store.DailyStat
	summary  insight.Summary
	projects store.ProjectStats
	tasks    store.TaskStats
	// rolling totals over trendDays
	totalDone  int
	totalFocus int

	chart barchart.Model
}

func newStatsModel(ws *store.Workspace, now func() time.Time) statsModel {
	return statsModel{
		ws:    ws,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

type statsDataMsg struct {
	week       []store.DailyStat
	lastDays   []store.DailyStat
	projects   store.ProjectStats
	tasks      store.TaskStats
	totalDone  int
	totalFocus int
}

func (s statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return statsDataMsg{
			week:       s.ws.Stats.Week(),
			lastDays:   s.ws.Stats.LastDays(trendDays),
			projects:   s.ws.Projects.Stats(),
			tasks:      s.ws.Tasks.Stats(),
			totalDone:  s.ws.Stats.TotalCompleted(trendDays),
			totalFocus: s.ws.Stats.TotalFocusTime(trendDays),
		}
	}
}

func (s statsModel) days() []store.DailyStat {
	if s.mode == statsWeek {
		return s.week
	}
	return s.lastDays
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.week = msg.week
		s.lastDays = msg.lastDays
		s.projects = msg.projects
		s.tasks = msg.tasks
		s.totalDone = msg.totalDone
		s.totalFocus = msg.totalFocus
		s.summary = insight.Summarize(s.week, s.lastDays)
		s.buildChart()
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right), key.Matches(msg, keys.Filter):
			if s.mode == statsLastDays {
				s.mode = statsWeek
			} else {
				s.mode = statsLastDays
			}
			s.buildChart()
			return s, nil
		}
	}
	return s, nil
}

func (s *statsModel) buildChart() {
	chartWidth := max(20, s.width-8)
	chartHeight := 10
	if s.height > 34 {
		chartHeight = 14
	}
	s.chart = barchart.New(chartWidth, chartHeight)

	today := dates.Today(s.now())
	var bars []barchart.BarData
	for _, d := range s.days() {
		label := d.Date
		if t, err := dates.Parse(d.Date); err == nil {
			label = t.Format("Mon 02")
		}
		color := colorPrimary
		switch {
		case d.Date == today:
			color = colorSuccess
		case d.TasksTotal == 0:
			color = colorSubtle
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "productivity",
				Value: float64(d.Productivity),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	lastTab := inactiveTabStyle.Render(fmt.Sprintf("Last %d days", trendDays))
	weekTab := inactiveTabStyle.Render("This week")
	if s.mode == statsLastDays {
		lastTab = activeTabStyle.Render(fmt.Sprintf("Last %d days", trendDays))
	} else {
		weekTab = activeTabStyle.Render("This week")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", lastTab, weekTab,
	)

	nav := mutedStyle.Render("  ←/→: switch range  (bars show daily productivity %)")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", s.renderSummary(), "", s.chart.View(), "", s.renderTable(w), "", nav,
		),
	)
}

func (s statsModel) renderSummary() string {
	sum := s.summary
	var trend string
	switch sum.Direction {
	case insight.Up:
		trend = successStyle.Render(fmt.Sprintf("▲ +%.0f pts", sum.Trend))
	case insight.Down:
		trend = errorStyle.Render(fmt.Sprintf("▼ %.0f pts", sum.Trend))
	default:
		trend = mutedStyle.Render("● stable")
	}

	lines := []string{
		fmt.Sprintf("This week    %s tasks done  %s focused",
			highlightStyle.Render(fmt.Sprintf("%d/%d", sum.WeeklyCompleted, sum.WeeklyTotal)),
			highlightStyle.Render(formatMinutes(sum.WeeklyFocusMinutes))),
		fmt.Sprintf("Last %d days  %s average productivity  %s  %s done  %s focused",
			trendDays,
			highlightStyle.Render(fmt.Sprintf("%d%%", sum.AvgProductivity)),
			trend,
			highlightStyle.Render(fmt.Sprint(s.totalDone)),
			highlightStyle.Render(formatMinutes(s.totalFocus))),
		mutedStyle.Render(fmt.Sprintf("Projects     %d total  %d active  %d done  %d urgent  %d/%d tasks",
			s.projects.Total, s.projects.Active, s.projects.Completed, s.projects.Urgent,
			s.projects.CompletedTasks, s.projects.TotalTasks)),
		mutedStyle.Render(fmt.Sprintf("Tasks        %d total  %d pending  %d overdue  %d%% complete",
			s.tasks.Total, s.tasks.Pending, s.tasks.Overdue, s.tasks.CompletionRate)),
	}
	return strings.Join(lines, "\n")
}

func (s statsModel) renderTable(w int) string {
	days := s.days()
	if len(days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %12s", "Date", "Done", "Focus", "Productivity")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 48))))
	for _, d := range days {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10s %11d%%",
			d.Date, fmt.Sprintf("%d/%d", d.TasksCompleted, d.TasksTotal), formatMinutes(d.FocusTime), d.Productivity))
	}
	return strings.Join(rows, "\n")
}
