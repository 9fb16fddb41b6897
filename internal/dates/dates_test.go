package dates

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func TestWeekStartMonday(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{day(2026, time.October, 19, 10), "2026-10-19"}, // Monday
		{day(2026, time.October, 21, 23), "2026-10-19"}, // Wednesday
		{day(2026, time.October, 25, 8), "2026-10-19"},  // Sunday
		{day(2026, time.October, 26, 0), "2026-10-26"},
	}
	for _, c := range cases {
		got := Format(WeekStart(c.in))
		if got != c.want {
			t.Fatalf("WeekStart(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(day(2026, time.October, 22, 12))
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if Format(days[0]) != "2026-10-19" || Format(days[6]) != "2026-10-25" {
		t.Fatalf("unexpected week: %s .. %s", Format(days[0]), Format(days[6]))
	}
	if days[0].Weekday() != time.Monday {
		t.Fatalf("first day should be Monday, got %s", days[0].Weekday())
	}
}

func TestDaysBetween(t *testing.T) {
	a := day(2026, time.October, 19, 23)
	b := day(2026, time.October, 20, 1)
	if got := DaysBetween(a, b); got != 1 {
		t.Fatalf("DaysBetween = %d, want 1", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Fatalf("DaysBetween reversed = %d, want -1", got)
	}
	if got := DaysBetween(a, a.Add(30*time.Minute)); got != 0 {
		t.Fatalf("same day = %d, want 0", got)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-02-27", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2026-03-01" {
		t.Fatalf("AddDays = %s, want 2026-03-01", got)
	}
	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsOverdue(t *testing.T) {
	ref := day(2026, time.October, 19, 9)
	if !IsOverdue("2026-10-18", false, ref) {
		t.Fatal("yesterday should be overdue")
	}
	if IsOverdue("2026-10-19", false, ref) {
		t.Fatal("today is not overdue")
	}
	if IsOverdue("2026-10-18", true, ref) {
		t.Fatal("completed work is never overdue")
	}
	if IsOverdue("", false, ref) || IsOverdue("garbage", false, ref) {
		t.Fatal("missing or bad dates are not overdue")
	}
}

func TestDaysRemaining(t *testing.T) {
	ref := day(2026, time.October, 19, 18)
	n, ok := DaysRemaining("2026-10-26", ref)
	if !ok || n != 7 {
		t.Fatalf("DaysRemaining = %d, %v", n, ok)
	}
	if _, ok := DaysRemaining("", ref); ok {
		t.Fatal("empty due date should not parse")
	}
}

func TestElapsedPercent(t *testing.T) {
	ref := day(2026, time.October, 19, 12)
	if got := ElapsedPercent("2026-10-09", "2026-10-29", ref); got != 50 {
		t.Fatalf("ElapsedPercent = %d, want 50", got)
	}
	if got := ElapsedPercent("2026-11-01", "2026-11-30", ref); got != 0 {
		t.Fatalf("future window = %d, want 0", got)
	}
	if got := ElapsedPercent("2026-09-01", "2026-09-30", ref); got != 100 {
		t.Fatalf("past window = %d, want 100", got)
	}
	if got := ElapsedPercent("2026-10-01", "", ref); got != 0 {
		t.Fatalf("open window = %d, want 0", got)
	}
}

func TestMonthGrid(t *testing.T) {
	grid := MonthGrid(day(2026, time.October, 19, 12))
	if len(grid) != 5 {
		t.Fatalf("October 2026 should span 5 weeks, got %d", len(grid))
	}
	if Format(grid[0][0]) != "2026-09-28" {
		t.Fatalf("grid starts %s, want 2026-09-28", Format(grid[0][0]))
	}
	last := grid[len(grid)-1][6]
	if Format(last) != "2026-11-01" {
		t.Fatalf("grid ends %s, want 2026-11-01", Format(last))
	}
}

func TestWithin(t *testing.T) {
	if !Within("2026-10-19", "2026-10-01", "2026-10-31") {
		t.Fatal("day inside window")
	}
	if !Within("2026-10-31", "2026-10-01", "2026-10-31") {
		t.Fatal("end day is inclusive")
	}
	if Within("2026-10-02", "2026-10-01", "") {
		t.Fatal("open window covers only the start day")
	}
	if !Within("2026-10-01", "2026-10-01", "") {
		t.Fatal("open window covers the start day")
	}
	if Within("2026-10-01", "", "") {
		t.Fatal("no start, no window")
	}
}
