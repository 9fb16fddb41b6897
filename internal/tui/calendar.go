package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusboard/internal/dates"
	"github.com/sadopc/focusboard/internal/store"
)

// calendarModel shows projects as all-day spans on a Monday-start month grid.
type calendarModel struct {
	ws     *store.Workspace
	now    func() time.Time
	width  int
	height int

	offset   int // months from the current one
	projects []store.Project
}

func newCalendarModel(ws *store.Workspace, now func() time.Time) calendarModel {
	return calendarModel{ws: ws, now: now}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

// month is the first day of the displayed month.
func (c calendarModel) month() time.Time {
	return dates.MonthStart(c.now()).AddDate(0, c.offset, 0)
}

type calendarDataMsg struct {
	projects []store.Project
}

func (c calendarModel) refresh() tea.Cmd {
	grid := dates.MonthGrid(c.month())
	from := dates.Format(grid[0][0])
	to := dates.Format(grid[len(grid)-1][6])
	return func() tea.Msg {
		items := c.ws.Projects.InWindow(from, to)
		store.SortProjects(items, store.SortName, store.Asc)
		return calendarDataMsg{projects: items}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		c.projects = msg.projects
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			c.offset--
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			c.offset++
			return c, c.refresh()
		case key.Matches(msg, keys.Back):
			if c.offset != 0 {
				c.offset = 0
				return c, c.refresh()
			}
		}
	}
	return c, nil
}

// spans returns the projects whose window covers day.
func (c calendarModel) spans(day time.Time) []store.Project {
	d := dates.Format(day)
	var out []store.Project
	for _, p := range c.projects {
		if dates.Within(d, p.StartDate, p.EndDate) {
			out = append(out, p)
		}
	}
	return out
}

func (c calendarModel) view() string {
	w := c.width - 4
	month := c.month()
	now := c.now()

	cellWidth := max(6, min(14, (w-6)/7))
	cell := lipgloss.NewStyle().Width(cellWidth)

	var header []string
	for _, d := range dates.WeekDays(now) {
		header = append(header, cell.Render(mutedStyle.Render(strings.ToUpper(d.Format("Mon")))))
	}

	rows := []string{
		titleStyle.Render(month.Format("January 2006")) + "  " + mutedStyle.Render("←/→: month  esc: today"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}

	for _, week := range dates.MonthGrid(month) {
		var cells []string
		for _, day := range week {
			num := fmt.Sprintf("%2d", day.Day())
			switch {
			case dates.SameDay(day, now):
				num = todayCellStyle.Render(num)
			case day.Month() != month.Month():
				num = otherMonthStyle.Render(num)
			}
			var marks strings.Builder
			for i, p := range c.spans(day) {
				if i == cellWidth-4 {
					marks.WriteString("+")
					break
				}
				marks.WriteString(dot(p.Color))
			}
			cells = append(cells, cell.Render(num+" "+marks.String()))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	rows = append(rows, "")
	if len(c.projects) == 0 {
		rows = append(rows, mutedStyle.Render("No projects scheduled this month"))
	}
	for _, p := range c.projects {
		span := p.StartDate
		if p.EndDate != "" && p.EndDate != p.StartDate {
			span += " → " + p.EndDate
		}
		rows = append(rows, fmt.Sprintf("%s %s %-24s %s  %s",
			dot(p.Color), store.IconGlyph(p.Icon), truncate(p.Name, 24),
			mutedStyle.Render(span), timeline(p, now)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
