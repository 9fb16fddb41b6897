// Package dates is the calendar surface shared by the repositories and the
// views: ISO day strings, Monday-start weeks and whole-day differences.
package dates

import (
	"math"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the ISO calendar date format used for every stored date.
const Layout = "2006-01-02"

var weeks = &now.Config{WeekStartDay: time.Monday}

func Format(t time.Time) string { return t.Format(Layout) }

// Today returns t's calendar day as YYYY-MM-DD.
func Today(t time.Time) string { return Format(t) }

// Parse reads a YYYY-MM-DD string as local midnight.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.Local)
}

func StartOfDay(t time.Time) time.Time { return weeks.With(t).BeginningOfDay() }

func EndOfDay(t time.Time) time.Time { return weeks.With(t).EndOfDay() }

// WeekStart returns midnight of the Monday starting t's week.
func WeekStart(t time.Time) time.Time { return weeks.With(t).BeginningOfWeek() }

// WeekDays returns the seven days of t's week, Monday first.
func WeekDays(t time.Time) []time.Time {
	start := WeekStart(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func MonthStart(t time.Time) time.Time { return weeks.With(t).BeginningOfMonth() }

func MonthEnd(t time.Time) time.Time { return weeks.With(t).EndOfMonth() }

// MonthGrid returns the Monday-start weeks covering t's month. Days outside
// the month pad the first and last rows.
func MonthGrid(t time.Time) [][7]time.Time {
	first := WeekStart(MonthStart(t))
	last := MonthEnd(t)
	var grid [][7]time.Time
	for day := first; !day.After(last); {
		var week [7]time.Time
		for i := range week {
			week[i] = day
			day = day.AddDate(0, 0, 1)
		}
		grid = append(grid, week)
	}
	return grid
}

// DaysBetween counts calendar days from a to b, negative when b is earlier.
// Clock times are ignored and DST shifts do not skew the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(math.Round(ub.Sub(ua).Hours() / 24))
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

// IsPast reports whether date is strictly before the day of ref. Unparsable
// dates are never past.
func IsPast(date string, ref time.Time) bool {
	t, err := Parse(date)
	if err != nil {
		return false
	}
	return DaysBetween(ref, t) < 0
}

// IsOverdue is IsPast for incomplete work.
func IsOverdue(due string, completed bool, ref time.Time) bool {
	if completed || due == "" {
		return false
	}
	return IsPast(due, ref)
}

// DaysRemaining returns the number of calendar days from ref to due.
func DaysRemaining(due string, ref time.Time) (int, bool) {
	t, err := Parse(due)
	if err != nil {
		return 0, false
	}
	return DaysBetween(ref, t), true
}

// ElapsedPercent is how far ref sits inside the [start, end] window, clamped
// to 0..100. Windows with a missing or unparsable bound report 0.
func ElapsedPercent(start, end string, ref time.Time) int {
	s, err := Parse(start)
	if err != nil {
		return 0
	}
	e, err := Parse(end)
	if err != nil {
		return 0
	}
	total := DaysBetween(s, e)
	elapsed := DaysBetween(s, ref)
	switch {
	case elapsed < 0:
		return 0
	case elapsed >= total:
		return 100
	}
	return int(math.Round(float64(elapsed) / float64(total) * 100))
}

// Within reports whether day falls inside [start, end]. An empty end
// collapses the window to the start day.
func Within(day, start, end string) bool {
	if start == "" {
		return false
	}
	if end == "" || end < start {
		end = start
	}
	return day >= start && day <= end
}
