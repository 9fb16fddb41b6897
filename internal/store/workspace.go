package store

import (
	"time"

	"github.com/sadopc/focusboard/internal/dates"
)

// Workspace bundles the three repositories over one store and applies the
// rules that span them.
type Workspace struct {
	Store    *Store
	Projects *Projects
	Tasks    *Tasks
	Stats    *Stats

	now func() time.Time
}

func NewWorkspace(s *Store, opts ...RepoOption) *Workspace {
	r := newRepo(s, opts)
	return &Workspace{
		Store:    s,
		Projects: NewProjects(s, opts...),
		Tasks:    NewTasks(s, opts...),
		Stats:    NewStats(s, opts...),
		now:      r.now,
	}
}

// DeleteProject removes a project and unlinks the standalone tasks that
// pointed at it. It returns whether the project existed and how many tasks
// were detached.
func (w *Workspace) DeleteProject(id string) (bool, int) {
	removed := w.Projects.Delete(id)
	detached := w.Tasks.DetachProject(id)
	if detached > 0 {
		w.Store.log.Info("detached tasks from deleted project", "project", id, "tasks", detached)
	}
	return removed, detached
}

// ToggleProjectTask flips an embedded task and books the change in today's
// stats.
func (w *Workspace) ToggleProjectTask(projectID string, taskID TaskID) (*ProjectTask, error) {
	t, err := w.Projects.ToggleTask(projectID, taskID)
	if err != nil {
		return nil, err
	}
	w.recordToggle(t.Completed)
	return t, nil
}

// CompleteProjectTask marks an embedded task done and books it in today's
// stats. A task that was already done is not booked twice.
func (w *Workspace) CompleteProjectTask(projectID string, taskID TaskID) (*ProjectTask, bool, error) {
	t, changed, err := w.Projects.CompleteTask(projectID, taskID)
	if err != nil {
		return nil, false, err
	}
	if changed {
		w.recordToggle(true)
	}
	return t, changed, nil
}

// ToggleTask flips a standalone task and books the change in today's stats.
func (w *Workspace) ToggleTask(id string) (*Task, error) {
	t, err := w.Tasks.Toggle(id)
	if err != nil {
		return nil, err
	}
	w.recordToggle(t.Completed)
	return t, nil
}

func (w *Workspace) recordToggle(completed bool) {
	var stat DailyStat
	if completed {
		stat = w.Stats.IncrementCompleted()
	} else {
		stat = w.Stats.DecrementCompleted()
	}
	w.Stats.SetTodayTotal(max(w.TodayWorkload(), stat.TasksCompleted))
}

// TodayWorkload counts work that belongs to today: tasks completed today
// plus pending tasks due today or earlier. Undated pending tasks are not
// counted.
func (w *Workspace) TodayWorkload() int {
	now := w.now()
	today := dates.Today(now)
	doneToday := func(at *Millis) bool {
		return at != nil && dates.SameDay(at.Time(), now)
	}
	due := func(date string) bool {
		return date != "" && date <= today
	}

	n := 0
	for _, p := range w.Projects.All() {
		for _, t := range p.Tasks {
			if t.Completed && doneToday(t.CompletedAt) || !t.Completed && due(t.DueDate) {
				n++
			}
		}
	}
	for _, t := range w.Tasks.All() {
		if t.Completed && doneToday(t.CompletedAt) || !t.Completed && due(t.DueDate) {
			n++
		}
	}
	return n
}

// FinishFocus books a focus session's whole minutes into today's stats.
// Sessions under a minute are dropped.
func (w *Workspace) FinishFocus(elapsed time.Duration) DailyStat {
	minutes := int(elapsed / time.Minute)
	if minutes <= 0 {
		return w.Stats.Today()
	}
	return w.Stats.AddFocusTime(minutes)
}

// Reset clears every collection.
func (w *Workspace) Reset() {
	w.Store.Clear()
}
