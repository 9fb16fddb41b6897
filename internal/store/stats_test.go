package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStats(t *testing.T) (*Stats, *testClock) {
	t.Helper()
	clock := newTestClock()
	return NewStats(newTestStore(t), WithClock(clock.now)), clock
}

func checkProductivity(t *testing.T, r *Stats) {
	t.Helper()
	for _, d := range r.coll.All() {
		if d.Productivity < 0 || d.Productivity > 100 {
			t.Fatalf("%s productivity %d out of range", d.Date, d.Productivity)
		}
	}
}

func TestTodayCreatesOnce(t *testing.T) {
	r, _ := newTestStats(t)
	d := r.Today()
	if d.Date != "2026-10-21" {
		t.Fatalf("date %q", d.Date)
	}
	r.Today()
	if n := len(r.All()); n != 1 {
		t.Fatalf("expected one stat, got %d", n)
	}
}

func TestCountersRecomputeProductivity(t *testing.T) {
	r, _ := newTestStats(t)
	r.SetTodayTotal(4)
	r.IncrementCompleted()
	d := r.IncrementCompleted()
	if d.TasksCompleted != 2 || d.Productivity != 50 {
		t.Fatalf("after increments: %+v", d)
	}

	d = r.DecrementCompleted()
	d = r.DecrementCompleted()
	d = r.DecrementCompleted()
	if d.TasksCompleted != 0 || d.Productivity != 0 {
		t.Fatalf("decrement must floor at zero: %+v", d)
	}

	// Completed beyond total stays within range.
	for range 6 {
		r.IncrementCompleted()
	}
	checkProductivity(t, r)

	total := 0
	d = r.UpdateToday(StatPatch{TasksTotal: &total})
	if d.Productivity != 0 {
		t.Fatalf("no tasks means zero productivity: %+v", d)
	}
}

func TestAddFocusTimeCaps(t *testing.T) {
	r, _ := newTestStats(t)
	r.AddFocusTime(1000)
	d := r.AddFocusTime(1000)
	if d.FocusTime != MaxFocusMinutes {
		t.Fatalf("focus time %d, want %d", d.FocusTime, MaxFocusMinutes)
	}
}

func TestWeekAndLastDaysZeroFill(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyStats, []byte(`[
		{"date":"2026-10-19","tasksCompleted":1,"tasksTotal":2,"focusTime":30,"productivity":50},
		{"date":"2026-10-16","tasksCompleted":3,"tasksTotal":3,"focusTime":10,"productivity":100}
	]`))
	clock := newTestClock()
	r := NewStats(s, WithClock(clock.now))

	week := r.Week()
	if len(week) != 7 || week[0].Date != "2026-10-19" || week[6].Date != "2026-10-25" {
		t.Fatalf("week bounds: %+v", week)
	}
	if week[0].TasksCompleted != 1 || week[1].TasksCompleted != 0 {
		t.Fatalf("week values: %+v", week[:2])
	}

	last := r.LastDays(7)
	var got []string
	for _, d := range last {
		got = append(got, d.Date)
	}
	want := []string{"2026-10-15", "2026-10-16", "2026-10-17", "2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("last days (-want +got):\n%s", diff)
	}
	if r.TotalCompleted(7) != 4 || r.TotalFocusTime(7) != 40 {
		t.Fatalf("totals: %d completed, %d minutes", r.TotalCompleted(7), r.TotalFocusTime(7))
	}
}

func TestAverageProductivityCountsOnlyDaysWithTasks(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyStats, []byte(`[
		{"date":"2026-10-20","tasksCompleted":1,"tasksTotal":2,"productivity":50},
		{"date":"2026-10-18","tasksCompleted":4,"tasksTotal":4,"productivity":100}
	]`))
	clock := newTestClock()
	r := NewStats(s, WithClock(clock.now))
	if got := r.AverageProductivity(7); got != 75 {
		t.Fatalf("average = %d, want 75", got)
	}
	if got := AverageProductivity(nil); got != 0 {
		t.Fatalf("empty average = %d", got)
	}
}

func TestCleanOld(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyStats, []byte(`[
		{"date":"2026-08-01"},
		{"date":"2026-09-21"},
		{"date":"2026-10-20"}
	]`))
	clock := newTestClock()
	r := NewStats(s, WithClock(clock.now))

	if n := r.CleanOld(0); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	clock.advance(24 * time.Hour)
	if n := r.CleanOld(7); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if all := r.All(); len(all) != 1 || all[0].Date != "2026-10-20" {
		t.Fatalf("remaining: %+v", all)
	}
}

func TestStoredProductivityIsRechecked(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyStats, []byte(`[{"date":"2026-10-21","tasksCompleted":9,"tasksTotal":3,"productivity":300,"focusTime":5000}]`))
	clock := newTestClock()
	r := NewStats(s, WithClock(clock.now))
	d, ok := r.ByDate("2026-10-21")
	if !ok || d.Productivity != 100 || d.FocusTime != MaxFocusMinutes {
		t.Fatalf("stored values not clamped: %+v", d)
	}
}
