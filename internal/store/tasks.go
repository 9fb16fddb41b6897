package store

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sadopc/focusboard/internal/dates"
)

type TaskInput struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Description   string   `json:"description" validate:"max=500"`
	ProjectID     string   `json:"projectId"`
	DueDate       string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	DueTime       string   `json:"dueTime" validate:"omitempty,datetime=15:04"`
	Priority      Priority `json:"priority" validate:"omitempty,oneof=basse moyenne haute urgente"`
	EstimatedTime string   `json:"estimatedTime" validate:"max=20"`
}

// TaskPatch lists the fields to overwrite; nil fields are left alone.
// Completion goes through Toggle.
type TaskPatch struct {
	Title         *string   `json:"title" validate:"omitnil,min=1,max=100"`
	Description   *string   `json:"description" validate:"omitnil,max=500"`
	ProjectID     *string   `json:"projectId"`
	DueDate       *string   `json:"dueDate" validate:"omitnil,omitempty,datetime=2006-01-02"`
	DueTime       *string   `json:"dueTime" validate:"omitnil,omitempty,datetime=15:04"`
	Priority      *Priority `json:"priority" validate:"omitnil,oneof=basse moyenne haute urgente"`
	EstimatedTime *string   `json:"estimatedTime" validate:"omitnil,max=20"`
}

func (tp TaskPatch) apply(t *Task) {
	if tp.Title != nil {
		t.Title = *tp.Title
	}
	if tp.Description != nil {
		t.Description = *tp.Description
	}
	if tp.ProjectID != nil {
		t.ProjectID = *tp.ProjectID
	}
	if tp.DueDate != nil {
		t.DueDate = *tp.DueDate
	}
	if tp.DueTime != nil {
		t.DueTime = *tp.DueTime
	}
	if tp.Priority != nil {
		t.Priority = *tp.Priority
	}
	if tp.EstimatedTime != nil {
		t.EstimatedTime = *tp.EstimatedTime
	}
}

// TaskFilter narrows Filter results. Zero fields match everything.
type TaskFilter struct {
	ProjectID string
	Completed *bool
	Priority  Priority
	DueDate   string
}

func (f TaskFilter) match(t Task) bool {
	switch {
	case f.ProjectID != "" && t.ProjectID != f.ProjectID:
		return false
	case f.Completed != nil && t.Completed != *f.Completed:
		return false
	case f.Priority != "" && t.Priority != f.Priority:
		return false
	case f.DueDate != "" && t.DueDate != f.DueDate:
		return false
	}
	return true
}

// Tasks is the repository of standalone tasks.
type Tasks struct {
	repo
	coll *Collection[Task]
}

func NewTasks(s *Store, opts ...RepoOption) *Tasks {
	return &Tasks{repo: newRepo(s, opts), coll: NewCollection[Task](s, KeyTasks)}
}

func (r *Tasks) Create(in TaskInput) (*Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}
	t := Task{
		ID:            r.newID(),
		Title:         in.Title,
		Description:   in.Description,
		ProjectID:     in.ProjectID,
		DueDate:       in.DueDate,
		DueTime:       in.DueTime,
		Priority:      cmp.Or(in.Priority, PriorityMedium),
		EstimatedTime: in.EstimatedTime,
		CreatedAt:     r.stamp(),
	}
	r.coll.Add(t)
	return &t, nil
}

func (r *Tasks) Update(id string, patch TaskPatch) (*Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if err := check(patch); err != nil {
		return nil, err
	}
	return r.mutate("update task", id, patch.apply)
}

// Toggle flips completion, stamping or clearing completedAt.
func (r *Tasks) Toggle(id string) (*Task, error) {
	now := r.stamp()
	return r.mutate("toggle task", id, func(t *Task) {
		t.Completed = !t.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	})
}

func (r *Tasks) mutate(op, id string, fn func(*Task)) (*Task, error) {
	var out Task
	n := r.coll.UpdateWhere(func(t Task) bool { return t.ID == id }, func(t *Task) {
		fn(t)
		if !t.Completed {
			t.CompletedAt = nil
		}
		out = *t
	})
	if n == 0 {
		return nil, fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return &out, nil
}

// Delete removes the task and reports whether it existed.
func (r *Tasks) Delete(id string) bool {
	return r.coll.RemoveWhere(func(t Task) bool { return t.ID == id }) > 0
}

func (r *Tasks) Get(id string) (Task, bool) {
	return r.coll.Find(func(t Task) bool { return t.ID == id })
}

func (r *Tasks) All() []Task { return r.coll.All() }

func (r *Tasks) Replace(items []Task) { r.coll.Replace(items) }

// DetachProject clears projectId on every task linked to projectID and
// returns how many were touched.
func (r *Tasks) DetachProject(projectID string) int {
	if projectID == "" {
		return 0
	}
	return r.coll.UpdateWhere(
		func(t Task) bool { return t.ProjectID == projectID },
		func(t *Task) { t.ProjectID = "" },
	)
}

func (r *Tasks) filter(keep func(Task) bool) []Task {
	var out []Task
	for _, t := range r.All() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Tasks) ByProject(projectID string) []Task {
	return r.filter(func(t Task) bool { return t.ProjectID == projectID })
}

func (r *Tasks) CompletedByProject(projectID string) []Task {
	return r.filter(func(t Task) bool { return t.ProjectID == projectID && t.Completed })
}

func (r *Tasks) PendingByProject(projectID string) []Task {
	return r.filter(func(t Task) bool { return t.ProjectID == projectID && !t.Completed })
}

// ByPriority returns pending tasks of the given priority.
func (r *Tasks) ByPriority(p Priority) []Task {
	return r.filter(func(t Task) bool { return t.Priority == p && !t.Completed })
}

// Today returns pending tasks due today.
func (r *Tasks) Today() []Task {
	today := dates.Today(r.now())
	return r.filter(func(t Task) bool { return t.DueDate == today && !t.Completed })
}

func (r *Tasks) Overdue() []Task {
	now := r.now()
	return r.filter(func(t Task) bool { return dates.IsOverdue(t.DueDate, t.Completed, now) })
}

// Upcoming returns pending tasks due within the next days days, today
// included, earliest first.
func (r *Tasks) Upcoming(days int) []Task {
	now := r.now()
	out := r.filter(func(t Task) bool {
		if t.DueDate == "" || t.Completed {
			return false
		}
		n, ok := dates.DaysRemaining(t.DueDate, now)
		return ok && n >= 0 && n <= days
	})
	slices.SortStableFunc(out, func(a, b Task) int { return strings.Compare(a.DueDate, b.DueDate) })
	return out
}

// Search matches query against title and description, ignoring case.
func (r *Tasks) Search(query string) []Task {
	return r.filter(func(t Task) bool { return matches(query, t.Title, t.Description) })
}

func (r *Tasks) Filter(f TaskFilter) []Task {
	return r.filter(f.match)
}

func (r *Tasks) Sort(key SortKey, order Order) []Task {
	items := r.All()
	SortTasks(items, key, order)
	return items
}

// SortTasks sorts items in place. Sorting by due date always puts undated
// tasks last, whatever the order. Unknown keys sort by createdAt.
func SortTasks(items []Task, key SortKey, order Order) {
	var compare func(a, b Task) int
	switch key {
	case SortTitle:
		col := collate.New(language.French)
		compare = func(a, b Task) int { return order.apply(col.CompareString(a.Title, b.Title)) }
	case SortDueDate:
		compare = func(a, b Task) int {
			switch {
			case a.DueDate == "" && b.DueDate == "":
				return 0
			case a.DueDate == "":
				return 1
			case b.DueDate == "":
				return -1
			}
			return order.apply(strings.Compare(a.DueDate, b.DueDate))
		}
	case SortPriority:
		compare = func(a, b Task) int { return order.apply(cmp.Compare(a.Priority.Rank(), b.Priority.Rank())) }
	default:
		compare = func(a, b Task) int { return order.apply(cmp.Compare(a.CreatedAt, b.CreatedAt)) }
	}
	slices.SortStableFunc(items, compare)
}

func (r *Tasks) Stats() TaskStats {
	now := r.now()
	today := dates.Today(now)
	var st TaskStats
	for _, t := range r.All() {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
			if t.Priority == PriorityUrgent {
				st.Urgent++
			}
		}
		if dates.IsOverdue(t.DueDate, t.Completed, now) {
			st.Overdue++
		}
		if t.DueDate == today {
			st.Today++
			if t.Completed {
				st.TodayCompleted++
			}
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return st
}
