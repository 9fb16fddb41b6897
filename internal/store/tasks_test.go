package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestTasks(t *testing.T) (*Tasks, *testClock) {
	t.Helper()
	clock := newTestClock()
	return NewTasks(newTestStore(t), WithClock(clock.now), seqIDs()), clock
}

func taskTitles(ts []Task) []string {
	var titles []string
	for _, t := range ts {
		titles = append(titles, t.Title)
	}
	return titles
}

func TestCreateTaskDefaults(t *testing.T) {
	r, clock := newTestTasks(t)
	task, err := r.Create(TaskInput{Title: " Write report ", ProjectID: "p1", DueDate: "2026-10-22", DueTime: "09:30"})
	if err != nil {
		t.Fatal(err)
	}
	want := Task{
		ID:        "id-1",
		Title:     "Write report",
		ProjectID: "p1",
		DueDate:   "2026-10-22",
		DueTime:   "09:30",
		Priority:  PriorityMedium,
		CreatedAt: MillisOf(clock.now()),
	}
	if diff := cmp.Diff(want, *task); diff != "" {
		t.Fatalf("created (-want +got):\n%s", diff)
	}
	got, ok := r.Get(task.ID)
	if !ok {
		t.Fatal("not stored")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored (-want +got):\n%s", diff)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	r, _ := newTestTasks(t)
	for _, in := range []TaskInput{
		{Title: ""},
		{Title: "x", DueDate: "tomorrow"},
		{Title: "x", DueTime: "9h"},
		{Title: "x", Priority: "max"},
	} {
		if _, err := r.Create(in); !IsValidation(err) {
			t.Fatalf("%+v: expected validation error, got %v", in, err)
		}
	}
	if len(r.All()) != 0 {
		t.Fatal("rejected tasks were stored")
	}
}

func TestToggleTask(t *testing.T) {
	r, clock := newTestTasks(t)
	task, _ := r.Create(TaskInput{Title: "x"})
	clock.advance(time.Hour)

	got, err := r.Toggle(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed || got.CompletedAt == nil || *got.CompletedAt != MillisOf(clock.now()) {
		t.Fatalf("toggle on: %+v", got)
	}
	got, _ = r.Toggle(task.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("toggle off: %+v", got)
	}

	if _, err := r.Toggle("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle missing: %v", err)
	}
}

func TestUpdateAndDeleteTask(t *testing.T) {
	r, _ := newTestTasks(t)
	task, _ := r.Create(TaskInput{Title: "x", Description: "keep"})

	title := "y"
	got, err := r.Update(task.ID, TaskPatch{Title: &title})
	if err != nil || got.Title != "y" || got.Description != "keep" {
		t.Fatalf("update: %+v %v", got, err)
	}
	if _, err := r.Update("ghost", TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	for _, blank := range []string{"", "   "} {
		if _, err := r.Update(task.ID, TaskPatch{Title: &blank}); !IsValidation(err) {
			t.Fatalf("blank title %q: %v", blank, err)
		}
	}
	if got, _ := r.Get(task.ID); got.Title != "y" {
		t.Fatalf("title = %q", got.Title)
	}

	if !r.Delete(task.ID) || r.Delete(task.ID) {
		t.Fatal("delete should report true then false")
	}
	if _, ok := r.Get(task.ID); ok {
		t.Fatal("deleted task still found")
	}
}

func TestTaskQueries(t *testing.T) {
	r, _ := newTestTasks(t)
	// Clock is 2026-10-21.
	r.Create(TaskInput{Title: "today", DueDate: "2026-10-21", ProjectID: "p"})
	r.Create(TaskInput{Title: "late", DueDate: "2026-10-19", Priority: PriorityUrgent})
	r.Create(TaskInput{Title: "soon", DueDate: "2026-10-25", ProjectID: "p"})
	r.Create(TaskInput{Title: "far", DueDate: "2026-12-01"})
	r.Create(TaskInput{Title: "undated", Priority: PriorityUrgent})
	done, _ := r.Create(TaskInput{Title: "done today", DueDate: "2026-10-21", ProjectID: "p", Priority: PriorityUrgent})
	r.Toggle(done.ID)

	cases := []struct {
		name string
		got  []Task
		want []string
	}{
		{"today", r.Today(), []string{"today"}},
		{"overdue", r.Overdue(), []string{"late"}},
		{"upcoming", r.Upcoming(7), []string{"today", "soon"}},
		{"by project", r.ByProject("p"), []string{"today", "soon", "done today"}},
		{"completed by project", r.CompletedByProject("p"), []string{"done today"}},
		{"pending by project", r.PendingByProject("p"), []string{"today", "soon"}},
		{"by priority", r.ByPriority(PriorityUrgent), []string{"late", "undated"}},
		{"search", r.Search("TODAY"), []string{"today", "done today"}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, taskTitles(c.got)); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", c.name, diff)
		}
	}

	completed := false
	got := taskTitles(r.Filter(TaskFilter{ProjectID: "p", Completed: &completed, DueDate: "2026-10-25"}))
	if diff := cmp.Diff([]string{"soon"}, got); diff != "" {
		t.Fatalf("filter (-want +got):\n%s", diff)
	}

	want := TaskStats{
		Total:          6,
		Completed:      1,
		Pending:        5,
		Urgent:         2,
		Overdue:        1,
		Today:          2,
		TodayCompleted: 1,
		CompletionRate: 17,
	}
	if diff := cmp.Diff(want, r.Stats()); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
}

func TestSortTasksByDueDateKeepsUndatedLast(t *testing.T) {
	r, _ := newTestTasks(t)
	r.Create(TaskInput{Title: "none"})
	r.Create(TaskInput{Title: "b", DueDate: "2026-10-25"})
	r.Create(TaskInput{Title: "a", DueDate: "2026-10-22"})

	if got := taskTitles(r.Sort(SortDueDate, Asc)); !cmp.Equal(got, []string{"a", "b", "none"}) {
		t.Fatalf("asc: %v", got)
	}
	if got := taskTitles(r.Sort(SortDueDate, Desc)); !cmp.Equal(got, []string{"b", "a", "none"}) {
		t.Fatalf("desc: %v", got)
	}
}

func TestSortTasksByCreatedAndTitle(t *testing.T) {
	r, clock := newTestTasks(t)
	r.Create(TaskInput{Title: "écrire"})
	clock.advance(time.Second)
	r.Create(TaskInput{Title: "Banc"})
	clock.advance(time.Second)
	r.Create(TaskInput{Title: "appel", Priority: PriorityHigh})

	if got := taskTitles(r.Sort(SortCreatedAt, Desc)); !cmp.Equal(got, []string{"appel", "Banc", "écrire"}) {
		t.Fatalf("createdAt desc: %v", got)
	}
	if got := taskTitles(r.Sort(SortTitle, Asc)); !cmp.Equal(got, []string{"appel", "Banc", "écrire"}) {
		t.Fatalf("title asc: %v", got)
	}
	if got := taskTitles(r.Sort(SortPriority, Desc)); got[0] != "appel" {
		t.Fatalf("priority desc: %v", got)
	}
}

func TestDetachProject(t *testing.T) {
	r, _ := newTestTasks(t)
	r.Create(TaskInput{Title: "a", ProjectID: "p"})
	r.Create(TaskInput{Title: "b", ProjectID: "q"})
	r.Create(TaskInput{Title: "c", ProjectID: "p"})

	if n := r.DetachProject("p"); n != 2 {
		t.Fatalf("detached %d, want 2", n)
	}
	if got := r.ByProject("p"); len(got) != 0 {
		t.Fatalf("tasks still linked: %v", taskTitles(got))
	}
	if n := r.DetachProject(""); n != 0 {
		t.Fatalf("empty id detached %d", n)
	}
}
