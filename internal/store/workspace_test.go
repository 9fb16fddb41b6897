package store

import (
	"testing"
	"time"
)

func newTestWorkspace(t *testing.T) (*Workspace, *testClock) {
	t.Helper()
	clock := newTestClock()
	return NewWorkspace(newTestStore(t), WithClock(clock.now), seqIDs()), clock
}

func TestDeleteProjectDetachesTasks(t *testing.T) {
	w, _ := newTestWorkspace(t)
	p, _ := w.Projects.Create(ProjectInput{Name: "A"})
	linked, _ := w.Tasks.Create(TaskInput{Title: "linked", ProjectID: p.ID})
	other, _ := w.Tasks.Create(TaskInput{Title: "other", ProjectID: "elsewhere"})

	removed, detached := w.DeleteProject(p.ID)
	if !removed || detached != 1 {
		t.Fatalf("DeleteProject = %v, %d", removed, detached)
	}
	if got, _ := w.Tasks.Get(linked.ID); got.ProjectID != "" {
		t.Fatalf("task still linked to %q", got.ProjectID)
	}
	if got, _ := w.Tasks.Get(other.ID); got.ProjectID != "elsewhere" {
		t.Fatalf("unrelated task touched: %q", got.ProjectID)
	}

	removed, detached = w.DeleteProject(p.ID)
	if removed || detached != 0 {
		t.Fatalf("second delete = %v, %d", removed, detached)
	}
}

func TestToggleBooksTodayStats(t *testing.T) {
	w, _ := newTestWorkspace(t)
	p, _ := w.Projects.Create(ProjectInput{Name: "A", Tasks: []string{"one", "two"}})
	w.Projects.UpdateTask(p.ID, p.Tasks[1].ID, ProjectTaskPatch{DueDate: ptr("2026-10-21")})
	task, _ := w.Tasks.Create(TaskInput{Title: "late", DueDate: "2026-10-20"})
	w.Tasks.Create(TaskInput{Title: "someday"})

	if _, err := w.ToggleProjectTask(p.ID, p.Tasks[0].ID); err != nil {
		t.Fatal(err)
	}
	d := w.Stats.Today()
	// one (done today) + two (due today) + late (overdue)
	if d.TasksCompleted != 1 || d.TasksTotal != 3 || d.Productivity != 33 {
		t.Fatalf("after first toggle: %+v", d)
	}

	if _, err := w.ToggleTask(task.ID); err != nil {
		t.Fatal(err)
	}
	d = w.Stats.Today()
	if d.TasksCompleted != 2 || d.TasksTotal != 3 || d.Productivity != 67 {
		t.Fatalf("after second toggle: %+v", d)
	}

	if _, err := w.ToggleTask(task.ID); err != nil {
		t.Fatal(err)
	}
	d = w.Stats.Today()
	if d.TasksCompleted != 1 || d.TasksTotal != 3 {
		t.Fatalf("after untoggle: %+v", d)
	}
}

func TestCompleteProjectTaskBooksOnce(t *testing.T) {
	w, _ := newTestWorkspace(t)
	p, _ := w.Projects.Create(ProjectInput{Name: "A", Tasks: []string{"one", "two"}})

	if _, changed, err := w.CompleteProjectTask(p.ID, p.Tasks[0].ID); err != nil || !changed {
		t.Fatalf("complete: %v %v", changed, err)
	}
	if _, changed, err := w.CompleteProjectTask(p.ID, p.Tasks[0].ID); err != nil || changed {
		t.Fatalf("complete again: %v %v", changed, err)
	}
	if d := w.Stats.Today(); d.TasksCompleted != 1 {
		t.Fatalf("today = %+v", d)
	}
	got, _ := w.Projects.Get(p.ID)
	if !got.Tasks[0].Completed || got.Tasks[1].Completed {
		t.Fatalf("tasks = %+v", got.Tasks)
	}
}

func TestToggleMissingTaskLeavesStats(t *testing.T) {
	w, _ := newTestWorkspace(t)
	if _, err := w.ToggleTask("ghost"); err == nil {
		t.Fatal("expected error")
	}
	if n := len(w.Stats.All()); n != 0 {
		t.Fatalf("stats written for a failed toggle: %d", n)
	}
}

func TestFinishFocus(t *testing.T) {
	w, _ := newTestWorkspace(t)
	if d := w.FinishFocus(40 * time.Second); d.FocusTime != 0 {
		t.Fatalf("short session counted: %+v", d)
	}
	if d := w.FinishFocus(25*time.Minute + 50*time.Second); d.FocusTime != 25 {
		t.Fatalf("focus = %d, want 25", d.FocusTime)
	}
}

func TestReset(t *testing.T) {
	w, _ := newTestWorkspace(t)
	w.Projects.Create(ProjectInput{Name: "A"})
	w.Tasks.Create(TaskInput{Title: "t"})
	w.Stats.Today()
	w.Reset()
	if len(w.Projects.All())+len(w.Tasks.All())+len(w.Stats.All()) != 0 {
		t.Fatal("reset left data behind")
	}
}

func ptr[T any](v T) *T { return &v }
