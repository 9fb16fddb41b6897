// Package insight derives the dashboard's figures from repository
// snapshots. Every function is pure: callers pass the data and the clock.
package insight

import (
	"math"
	"time"

	"github.com/sadopc/focusboard/internal/dates"
	"github.com/sadopc/focusboard/internal/store"
)

// TrendThreshold is the productivity delta, in points, beyond which a trend
// counts as moving.
const TrendThreshold = 5

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// CompletionRate is the share of completed tasks across every project.
func CompletionRate(projects []store.Project) int {
	total, done := 0, 0
	for _, p := range projects {
		total += p.TotalTasks
		done += p.CompletedTasks
	}
	return percent(done, total)
}

// ProjectHealth is the share of projects that are active.
func ProjectHealth(projects []store.Project) int {
	active := 0
	for _, p := range projects {
		if p.IsActive() {
			active++
		}
	}
	return percent(active, len(projects))
}

// Focus is the task surfaced as next up.
type Focus struct {
	Project store.Project
	Task    store.ProjectTask
}

// NextFocus picks the first incomplete task of the first unfinished project
// that has one, in stored order.
func NextFocus(projects []store.Project) (Focus, bool) {
	for _, p := range projects {
		if p.Status == store.StatusDone {
			continue
		}
		for _, t := range p.Tasks {
			if !t.Completed {
				return Focus{Project: p, Task: t}, true
			}
		}
	}
	return Focus{}, false
}

// EffectiveCompletion is when a completed task was finished. Records
// without completedAt fall back to a numeric id, which older data used as
// a creation timestamp. That fallback only holds while ids stay time-based.
func EffectiveCompletion(t store.ProjectTask) (time.Time, bool) {
	if !t.Completed {
		return time.Time{}, false
	}
	if t.CompletedAt != nil {
		return t.CompletedAt.Time(), true
	}
	if ms, ok := t.ID.Millis(); ok {
		return ms.Time(), true
	}
	return time.Time{}, false
}

// DayCount is one bar of the weekly chart.
type DayCount struct {
	Date    time.Time
	Count   int
	IsToday bool
}

// Label is the short weekday name shown under the bar.
func (d DayCount) Label() string { return d.Date.Format("Mon") }

// WeeklyTrend counts completed project tasks per day of now's Monday-start
// week.
func WeeklyTrend(projects []store.Project, now time.Time) []DayCount {
	days := dates.WeekDays(now)
	out := make([]DayCount, len(days))
	for i, d := range days {
		out[i] = DayCount{Date: d, IsToday: dates.SameDay(d, now)}
	}
	for _, p := range projects {
		for _, t := range p.Tasks {
			at, ok := EffectiveCompletion(t)
			if !ok {
				continue
			}
			for i, d := range days {
				if !at.Before(dates.StartOfDay(d)) && !at.After(dates.EndOfDay(d)) {
					out[i].Count++
					break
				}
			}
		}
	}
	return out
}

// WeekTotal sums a weekly trend.
func WeekTotal(days []DayCount) int {
	n := 0
	for _, d := range days {
		n += d.Count
	}
	return n
}

// ProductivityTrend compares the mean productivity of the first three and
// last three days. Fewer than two days yield no trend.
func ProductivityTrend(days []store.DailyStat) (float64, Direction) {
	if len(days) < 2 {
		return 0, Stable
	}
	head := days[:min(3, len(days))]
	tail := days[max(len(days)-3, 0):]
	delta := mean(tail) - mean(head)
	switch {
	case delta > TrendThreshold:
		return delta, Up
	case delta < -TrendThreshold:
		return delta, Down
	}
	return delta, Stable
}

func mean(days []store.DailyStat) float64 {
	sum := 0
	for _, d := range days {
		sum += d.Productivity
	}
	return float64(sum) / float64(len(days))
}

// Summary is the weekly figure block of the stats view.
type Summary struct {
	WeeklyCompleted    int
	WeeklyTotal        int
	WeeklyFocusMinutes int
	AvgProductivity    int
	Trend              float64
	Direction          Direction
}

// Summarize reduces the current week and the last seven days into one
// Summary.
func Summarize(week, lastDays []store.DailyStat) Summary {
	var s Summary
	for _, d := range week {
		s.WeeklyCompleted += d.TasksCompleted
		s.WeeklyTotal += d.TasksTotal
		s.WeeklyFocusMinutes += d.FocusTime
	}
	s.AvgProductivity = store.AverageProductivity(lastDays)
	s.Trend, s.Direction = ProductivityTrend(lastDays)
	return s
}

// Gauges are the three dashboard rings.
type Gauges struct {
	DailyGoal     int // today's productivity
	WeeklyFocus   int // share of the weekly focus target reached
	ActiveProject int
}

// DashboardGauges fills the rings from today's stat, the week and the
// projects. focusTarget is the weekly focus goal in minutes.
func DashboardGauges(today store.DailyStat, week []store.DailyStat, projects []store.Project, focusTarget int) Gauges {
	focus := 0
	for _, d := range week {
		focus += d.FocusTime
	}
	return Gauges{
		DailyGoal:     today.Productivity,
		WeeklyFocus:   min(percent(focus, focusTarget), 100),
		ActiveProject: ProjectHealth(projects),
	}
}
