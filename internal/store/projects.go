package store

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sadopc/focusboard/internal/dates"
)

// ProjectInput is what a caller supplies to create a project. Empty fields
// take their defaults.
type ProjectInput struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Color       string   `json:"color" validate:"omitempty,oneof=blue pink green yellow purple orange"`
	Icon        string   `json:"icon" validate:"omitempty,oneof=palette megaphone code shield file rocket users settings calendar dashboard folder check"`
	StartDate   string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=basse moyenne haute urgente"`
	Status      Status   `json:"status" validate:"omitempty,oneof=ACTIF PLANIFICATION TERMINÉ URGENT"`
	Tasks       []string `json:"tasks" validate:"dive,required,max=100"`
}

// ProjectPatch lists the fields to overwrite; nil fields are left alone.
// Task counters are derived and cannot be patched.
type ProjectPatch struct {
	Name        *string   `json:"name" validate:"omitnil,min=1,max=50"`
	Description *string   `json:"description" validate:"omitnil,max=500"`
	Color       *string   `json:"color" validate:"omitnil,oneof=blue pink green yellow purple orange"`
	Icon        *string   `json:"icon" validate:"omitnil,oneof=palette megaphone code shield file rocket users settings calendar dashboard folder check"`
	StartDate   *string   `json:"startDate" validate:"omitnil,datetime=2006-01-02"`
	EndDate     *string   `json:"endDate" validate:"omitnil,omitempty,datetime=2006-01-02"`
	Priority    *Priority `json:"priority" validate:"omitnil,oneof=basse moyenne haute urgente"`
	Status      *Status   `json:"status" validate:"omitnil,oneof=ACTIF PLANIFICATION TERMINÉ URGENT"`
}

func (pp *ProjectPatch) normalize() {
	if pp.Name != nil {
		name := strings.TrimSpace(*pp.Name)
		pp.Name = &name
	}
}

func (pp ProjectPatch) apply(p *Project) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Color != nil {
		p.Color = *pp.Color
	}
	if pp.Icon != nil {
		p.Icon = *pp.Icon
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		p.EndDate = *pp.EndDate
	}
	if pp.Priority != nil {
		p.Priority = *pp.Priority
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}

// ProjectTaskInput describes a task added to a project.
type ProjectTaskInput struct {
	Text          string   `json:"text" validate:"required,max=100"`
	EstimatedTime string   `json:"estimatedTime" validate:"max=20"`
	DueDate       string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority      Priority `json:"priority" validate:"omitempty,oneof=basse moyenne haute urgente"`
}

type ProjectTaskPatch struct {
	Text          *string   `json:"text" validate:"omitnil,min=1,max=100"`
	EstimatedTime *string   `json:"estimatedTime" validate:"omitnil,max=20"`
	DueDate       *string   `json:"dueDate" validate:"omitnil,omitempty,datetime=2006-01-02"`
	Priority      *Priority `json:"priority" validate:"omitnil,omitempty,oneof=basse moyenne haute urgente"`
}

// Projects is the repository of projects and their embedded tasks.
type Projects struct {
	repo
	coll *Collection[Project]
}

func NewProjects(s *Store, opts ...RepoOption) *Projects {
	return &Projects{repo: newRepo(s, opts), coll: NewCollection[Project](s, KeyProjects)}
}

func (r *Projects) Create(in ProjectInput) (*Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Tasks = slices.Clone(in.Tasks)
	for i := range in.Tasks {
		in.Tasks[i] = strings.TrimSpace(in.Tasks[i])
	}
	if err := check(in); err != nil {
		return nil, err
	}

	now := r.stamp()
	p := Project{
		ID:           r.newID(),
		Name:         in.Name,
		Description:  in.Description,
		Color:        cmp.Or(in.Color, DefaultColor),
		Icon:         cmp.Or(in.Icon, DefaultIcon),
		StartDate:    cmp.Or(in.StartDate, dates.Today(r.now())),
		EndDate:      in.EndDate,
		Priority:     cmp.Or(in.Priority, PriorityMedium),
		Status:       cmp.Or(in.Status, StatusActive),
		Tasks:        make([]ProjectTask, 0, len(in.Tasks)),
		CreatedAt:    now,
		LastModified: now,
	}
	for _, text := range in.Tasks {
		p.Tasks = append(p.Tasks, ProjectTask{ID: TaskID(r.newID()), Text: text})
	}
	if err := checkDateRange(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	p.recount()
	r.coll.Add(p)
	return &p, nil
}

// Update merges patch into the project and touches lastModified.
func (r *Projects) Update(id string, patch ProjectPatch) (*Project, error) {
	patch.normalize()
	if err := check(patch); err != nil {
		return nil, err
	}
	return r.mutate("update project", id, func(p *Project) error {
		patch.apply(p)
		return checkDateRange(p.StartDate, p.EndDate)
	})
}

// Delete removes the project. Deleting an unknown id is not an error; the
// result reports whether anything was removed.
func (r *Projects) Delete(id string) bool {
	return r.coll.RemoveWhere(func(p Project) bool { return p.ID == id }) > 0
}

func (r *Projects) Get(id string) (Project, bool) {
	p, ok := r.coll.Find(func(p Project) bool { return p.ID == id })
	if ok {
		p.recount()
	}
	return p, ok
}

// All returns every project in stored order with counters re-derived.
func (r *Projects) All() []Project {
	items := r.coll.All()
	for i := range items {
		items[i].recount()
	}
	return items
}

// Replace overwrites the whole collection, as an import does.
func (r *Projects) Replace(items []Project) {
	for i := range items {
		items[i].recount()
	}
	r.coll.Replace(items)
}

// AddTask appends a task to the project's list.
func (r *Projects) AddTask(projectID string, in ProjectTaskInput) (*ProjectTask, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := check(in); err != nil {
		return nil, err
	}
	t := ProjectTask{
		ID:            TaskID(r.newID()),
		Text:          in.Text,
		EstimatedTime: in.EstimatedTime,
		DueDate:       in.DueDate,
		Priority:      in.Priority,
	}
	_, err := r.mutate("add task", projectID, func(p *Project) error {
		p.Tasks = append(p.Tasks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RemoveTask drops a task from the project. A missing task is not an
// error; a missing project is.
func (r *Projects) RemoveTask(projectID string, taskID TaskID) (*Project, error) {
	return r.mutate("remove task", projectID, func(p *Project) error {
		if i := p.TaskIndex(taskID); i >= 0 {
			p.Tasks = slices.Delete(p.Tasks, i, i+1)
		}
		return nil
	})
}

// ToggleTask flips a task's completion, stamping or clearing completedAt.
// It returns the task after the flip.
func (r *Projects) ToggleTask(projectID string, taskID TaskID) (*ProjectTask, error) {
	var out ProjectTask
	now := r.stamp()
	_, err := r.mutate("toggle task", projectID, func(p *Project) error {
		i := p.TaskIndex(taskID)
		if i < 0 {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		t := &p.Tasks[i]
		t.Completed = !t.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
		out = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// errUnchanged aborts a mutation that would not change anything.
var errUnchanged = errors.New("unchanged")

// CompleteTask marks a task done and stamps completedAt. A task that is
// already done is left as is and reported unchanged.
func (r *Projects) CompleteTask(projectID string, taskID TaskID) (*ProjectTask, bool, error) {
	var out ProjectTask
	now := r.stamp()
	_, err := r.mutate("complete task", projectID, func(p *Project) error {
		i := p.TaskIndex(taskID)
		if i < 0 {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		t := &p.Tasks[i]
		out = *t
		if t.Completed {
			return errUnchanged
		}
		at := now
		t.Completed = true
		t.CompletedAt = &at
		out = *t
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged):
		return &out, false, nil
	case err != nil:
		return nil, false, err
	}
	return &out, true, nil
}

func (r *Projects) UpdateTask(projectID string, taskID TaskID, patch ProjectTaskPatch) (*ProjectTask, error) {
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		patch.Text = &text
	}
	if err := check(patch); err != nil {
		return nil, err
	}
	var out ProjectTask
	_, err := r.mutate("update task", projectID, func(p *Project) error {
		i := p.TaskIndex(taskID)
		if i < 0 {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		t := &p.Tasks[i]
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.EstimatedTime != nil {
			t.EstimatedTime = *patch.EstimatedTime
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		out = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// mutate applies fn to the project under the store lock, then re-derives
// its counters and touches lastModified. An error from fn aborts the write.
func (r *Projects) mutate(op, id string, fn func(*Project) error) (*Project, error) {
	var (
		out     Project
		found   bool
		failure error
	)
	now := r.stamp()
	r.coll.modify(func(items []Project) ([]Project, bool) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			found = true
			p := items[i]
			p.Tasks = slices.Clone(p.Tasks)
			if err := fn(&p); err != nil {
				failure = err
				return nil, false
			}
			p.recount()
			p.LastModified = now
			items[i] = p
			out = p
			return items, true
		}
		return nil, false
	})
	if failure != nil {
		return nil, fmt.Errorf("%s: %w", op, failure)
	}
	if !found {
		return nil, fmt.Errorf("%s %s: project %w", op, id, ErrNotFound)
	}
	return &out, nil
}

// Progress is the completion percentage of one project, 0 when unknown.
func (r *Projects) Progress(id string) int {
	p, ok := r.Get(id)
	if !ok {
		return 0
	}
	return p.Progress()
}

func (r *Projects) filter(keep func(Project) bool) []Project {
	var out []Project
	for _, p := range r.All() {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Projects) ByStatus(s Status) []Project {
	return r.filter(func(p Project) bool { return p.Status == s })
}

func (r *Projects) ByPriority(pr Priority) []Project {
	return r.filter(func(p Project) bool { return p.Priority == pr })
}

// Active returns projects in ACTIF or URGENT status.
func (r *Projects) Active() []Project {
	return r.filter(Project.IsActive)
}

func (r *Projects) Completed() []Project { return r.ByStatus(StatusDone) }

func (r *Projects) Urgent() []Project { return r.ByStatus(StatusUrgent) }

// Search matches query against name and description, ignoring case.
func (r *Projects) Search(query string) []Project {
	return r.filter(func(p Project) bool { return matches(query, p.Name, p.Description) })
}

// InWindow returns projects whose date span overlaps [from, to]. A project
// without an end date spans its start day only.
func (r *Projects) InWindow(from, to string) []Project {
	return r.filter(func(p Project) bool {
		if p.StartDate == "" {
			return false
		}
		end := p.EndDate
		if end == "" || end < p.StartDate {
			end = p.StartDate
		}
		return p.StartDate <= to && end >= from
	})
}

// Sort returns a sorted copy of all projects. Ties keep stored order.
func (r *Projects) Sort(key SortKey, order Order) []Project {
	items := r.All()
	SortProjects(items, key, order)
	return items
}

// SortProjects sorts items in place by key. Unknown keys sort by
// lastModified.
func SortProjects(items []Project, key SortKey, order Order) {
	var compare func(a, b Project) int
	switch key {
	case SortName:
		col := collate.New(language.French)
		compare = func(a, b Project) int { return col.CompareString(a.Name, b.Name) }
	case SortProgress:
		compare = func(a, b Project) int { return cmp.Compare(a.Ratio(), b.Ratio()) }
	case SortPriority:
		compare = func(a, b Project) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) }
	default:
		compare = func(a, b Project) int { return cmp.Compare(a.LastModified, b.LastModified) }
	}
	slices.SortStableFunc(items, func(a, b Project) int { return order.apply(compare(a, b)) })
}

func (r *Projects) Stats() ProjectStats {
	var st ProjectStats
	for _, p := range r.All() {
		st.Total++
		if p.IsActive() {
			st.Active++
		}
		switch p.Status {
		case StatusDone:
			st.Completed++
		case StatusUrgent:
			st.Urgent++
		}
		st.TotalTasks += p.TotalTasks
		st.CompletedTasks += p.CompletedTasks
	}
	return st
}
