package store

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type Priority string

const (
	PriorityLow    Priority = "basse"
	PriorityMedium Priority = "moyenne"
	PriorityHigh   Priority = "haute"
	PriorityUrgent Priority = "urgente"
)

// Priorities lists the priority levels from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank orders priorities basse < moyenne < haute < urgente. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return string(p)
}

type Status string

const (
	StatusActive   Status = "ACTIF"
	StatusPlanning Status = "PLANIFICATION"
	StatusDone     Status = "TERMINÉ"
	StatusUrgent   Status = "URGENT"
)

var Statuses = []Status{StatusActive, StatusPlanning, StatusDone, StatusUrgent}

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPlanning:
		return "Planning"
	case StatusDone:
		return "Done"
	case StatusUrgent:
		return "Urgent"
	}
	return string(s)
}

// Millis is a Unix timestamp in milliseconds.
type Millis int64

func MillisOf(t time.Time) Millis { return Millis(t.UnixMilli()) }

func (m Millis) Time() time.Time { return time.UnixMilli(int64(m)) }

// TaskID identifies an embedded project task. Older records used numeric
// creation timestamps as ids, so numbers are accepted and written back as
// numbers.
type TaskID string

func (id TaskID) String() string { return string(id) }

// Millis reports the id as a timestamp when it is numeric.
func (id TaskID) Millis() (Millis, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return Millis(n), true
}

func (id TaskID) MarshalJSON() ([]byte, error) {
	if _, ok := id.Millis(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *TaskID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("task id %s: not a string or number", b)
	}
	*id = TaskID(b)
	return nil
}

// ProjectTask is a task embedded in a project's ordered task list.
type ProjectTask struct {
	ID            TaskID   `json:"id"`
	Text          string   `json:"text"`
	Completed     bool     `json:"completed"`
	CompletedAt   *Millis  `json:"completedAt"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
	DueDate       string   `json:"dueDate,omitempty"`
	Priority      Priority `json:"priority,omitempty"`
}

type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Color          string        `json:"color"`
	Icon           string        `json:"icon"`
	StartDate      string        `json:"startDate"`
	EndDate        string        `json:"endDate"`
	Priority       Priority      `json:"priority"`
	Status         Status        `json:"status"`
	Tasks          []ProjectTask `json:"tasks"`
	TotalTasks     int           `json:"totalTasks"`
	CompletedTasks int           `json:"completedTasks"`
	CreatedAt      Millis        `json:"createdAt"`
	LastModified   Millis        `json:"lastModified"`
}

// recount re-derives the task counters from the task list. Stored counters
// are never trusted.
func (p *Project) recount() {
	if p.Tasks == nil {
		p.Tasks = []ProjectTask{}
	}
	done := 0
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Completed {
			done++
		} else {
			t.CompletedAt = nil
		}
	}
	p.TotalTasks = len(p.Tasks)
	p.CompletedTasks = done
}

// Ratio is completed/total, 0 for a project without tasks.
func (p Project) Ratio() float64 {
	if p.TotalTasks == 0 {
		return 0
	}
	return float64(p.CompletedTasks) / float64(p.TotalTasks)
}

// Progress is the completion percentage rounded to the nearest integer.
func (p Project) Progress() int {
	return int(math.Round(p.Ratio() * 100))
}

func (p Project) IsActive() bool {
	return p.Status == StatusActive || p.Status == StatusUrgent
}

func (p Project) TaskIndex(id TaskID) int {
	for i, t := range p.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Task is a standalone task, optionally linked to a project.
type Task struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ProjectID     string   `json:"projectId"`
	Completed     bool     `json:"completed"`
	DueDate       string   `json:"dueDate"`
	DueTime       string   `json:"dueTime"`
	Priority      Priority `json:"priority"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
	CreatedAt     Millis   `json:"createdAt"`
	CompletedAt   *Millis  `json:"completedAt"`
}

// DailyStat aggregates one calendar day.
type DailyStat struct {
	Date           string `json:"date"`
	TasksCompleted int    `json:"tasksCompleted"`
	TasksTotal     int    `json:"tasksTotal"`
	FocusTime      int    `json:"focusTime"` // minutes
	Productivity   int    `json:"productivity"`
}

// MaxFocusMinutes caps the focus time recorded for a single day.
const MaxFocusMinutes = 1440

func (d *DailyStat) recompute() {
	if d.TasksCompleted < 0 {
		d.TasksCompleted = 0
	}
	if d.TasksTotal < 0 {
		d.TasksTotal = 0
	}
	d.FocusTime = min(max(d.FocusTime, 0), MaxFocusMinutes)
	d.Productivity = 0
	if d.TasksTotal > 0 {
		d.Productivity = int(math.Round(float64(d.TasksCompleted) / float64(d.TasksTotal) * 100))
	}
	d.Productivity = min(max(d.Productivity, 0), 100)
}

// SortKey names a sort order for Sort queries.
type SortKey string

const (
	SortLastModified SortKey = "lastModified"
	SortName         SortKey = "name"
	SortProgress     SortKey = "progress"
	SortPriority     SortKey = "priority"
	SortCreatedAt    SortKey = "createdAt"
	SortTitle        SortKey = "title"
	SortDueDate      SortKey = "dueDate"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

func (o Order) apply(c int) int {
	if o == Desc {
		return -c
	}
	return c
}

// ProjectStats counts projects and their embedded tasks.
type ProjectStats struct {
	Total          int
	Active         int
	Completed      int
	Urgent         int
	TotalTasks     int
	CompletedTasks int
}

// TaskStats counts standalone tasks.
type TaskStats struct {
	Total          int
	Completed      int
	Pending        int
	Urgent         int
	Overdue        int
	Today          int
	TodayCompleted int
	CompletionRate int
}
