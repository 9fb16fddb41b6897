package store

import (
	"math"

	"github.com/sadopc/focusboard/internal/dates"
)

// DefaultRetentionDays is how many days of stats CleanOld keeps by default.
const DefaultRetentionDays = 30

// StatPatch overwrites today's counters; nil fields are left alone.
// Productivity is always recomputed.
type StatPatch struct {
	TasksCompleted *int
	TasksTotal     *int
	FocusTime      *int
}

// Stats is the repository of per-day aggregates, keyed by date.
type Stats struct {
	repo
	coll *Collection[DailyStat]
}

func NewStats(s *Store, opts ...RepoOption) *Stats {
	return &Stats{repo: newRepo(s, opts), coll: NewCollection[DailyStat](s, KeyStats)}
}

// All returns every stored day with its derived fields re-checked.
func (r *Stats) All() []DailyStat {
	items := r.coll.All()
	for i := range items {
		items[i].recompute()
	}
	return items
}

func (r *Stats) ByDate(date string) (DailyStat, bool) {
	d, ok := r.coll.Find(func(d DailyStat) bool { return d.Date == date })
	if ok {
		d.recompute()
	}
	return d, ok
}

// Today returns today's stat, creating an empty one on first use.
func (r *Stats) Today() DailyStat {
	return r.updateToday(func(*DailyStat) {})
}

func (r *Stats) UpdateToday(p StatPatch) DailyStat {
	return r.updateToday(func(d *DailyStat) {
		if p.TasksCompleted != nil {
			d.TasksCompleted = *p.TasksCompleted
		}
		if p.TasksTotal != nil {
			d.TasksTotal = *p.TasksTotal
		}
		if p.FocusTime != nil {
			d.FocusTime = *p.FocusTime
		}
	})
}

func (r *Stats) IncrementCompleted() DailyStat {
	return r.updateToday(func(d *DailyStat) { d.TasksCompleted++ })
}

// DecrementCompleted lowers today's completed count, never below zero.
func (r *Stats) DecrementCompleted() DailyStat {
	return r.updateToday(func(d *DailyStat) { d.TasksCompleted = max(d.TasksCompleted-1, 0) })
}

func (r *Stats) SetTodayTotal(total int) DailyStat {
	return r.updateToday(func(d *DailyStat) { d.TasksTotal = total })
}

// AddFocusTime adds minutes to today's focus time, capped at one day.
func (r *Stats) AddFocusTime(minutes int) DailyStat {
	return r.updateToday(func(d *DailyStat) { d.FocusTime += minutes })
}

func (r *Stats) updateToday(fn func(*DailyStat)) DailyStat {
	today := dates.Today(r.now())
	var out DailyStat
	r.coll.modify(func(items []DailyStat) ([]DailyStat, bool) {
		for i := range items {
			if items[i].Date != today {
				continue
			}
			before := items[i]
			fn(&items[i])
			items[i].recompute()
			out = items[i]
			return items, out != before
		}
		d := DailyStat{Date: today}
		fn(&d)
		d.recompute()
		out = d
		return append(items, d), true
	})
	return out
}

// Week returns the current Monday-start week, zero-filled.
func (r *Stats) Week() []DailyStat {
	index := r.index()
	days := dates.WeekDays(r.now())
	out := make([]DailyStat, len(days))
	for i, day := range days {
		date := dates.Format(day)
		out[i] = index[date]
		out[i].Date = date
	}
	return out
}

// LastDays returns the n days ending today, oldest first, zero-filled.
func (r *Stats) LastDays(n int) []DailyStat {
	if n <= 0 {
		return nil
	}
	index := r.index()
	today := dates.StartOfDay(r.now())
	out := make([]DailyStat, n)
	for i := range out {
		date := dates.Format(today.AddDate(0, 0, i-n+1))
		out[i] = index[date]
		out[i].Date = date
	}
	return out
}

// AverageProductivity averages productivity over the last n days, counting
// only days that had tasks.
func (r *Stats) AverageProductivity(n int) int {
	return AverageProductivity(r.LastDays(n))
}

func AverageProductivity(days []DailyStat) int {
	sum, count := 0, 0
	for _, d := range days {
		if d.TasksTotal > 0 {
			sum += d.Productivity
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

func (r *Stats) TotalCompleted(n int) int {
	total := 0
	for _, d := range r.LastDays(n) {
		total += d.TasksCompleted
	}
	return total
}

// TotalFocusTime sums focus minutes over the last n days.
func (r *Stats) TotalFocusTime(n int) int {
	total := 0
	for _, d := range r.LastDays(n) {
		total += d.FocusTime
	}
	return total
}

// CleanOld drops stats older than days days and reports how many went.
// Non-positive values use DefaultRetentionDays.
func (r *Stats) CleanOld(days int) int {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := dates.Format(r.now().AddDate(0, 0, -days))
	return r.coll.RemoveWhere(func(d DailyStat) bool { return d.Date < cutoff })
}

func (r *Stats) index() map[string]DailyStat {
	all := r.All()
	m := make(map[string]DailyStat, len(all))
	for _, d := range all {
		if _, dup := m[d.Date]; !dup {
			m[d.Date] = d
		}
	}
	return m
}
