package tui

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusboard/internal/dates"
	"github.com/sadopc/focusboard/internal/store"
)

type taskMode int

const (
	tasksAll taskMode = iota
	tasksPending
	tasksToday
	tasksOverdue
	tasksUpcoming
)

var taskModeNames = []string{"All", "Pending", "Today", "Overdue", "Upcoming"}

// upcomingDays is the window of the Upcoming tab.
const upcomingDays = 7

var taskSortKeys = []store.SortKey{store.SortCreatedAt, store.SortDueDate, store.SortPriority, store.SortTitle}

type tasksModel struct {
	ws     *store.Workspace
	now    func() time.Time
	width  int
	height int

	mode     taskMode
	tasks    []store.Task
	projects map[string]store.Project
	stats    store.TaskStats
	cursor   int

	sortKey   store.SortKey
	order     store.Order
	search    textinput.Model
	searching bool

	formActive bool
	form       *huh.Form
	formType   string // "task", "edit_task", "delete"
	editingID  string

	tf      *taskForm
	confirm *bool
}

func newTasksModel(ws *store.Workspace, now func() time.Time) tasksModel {
	search := textinput.New()
	search.Placeholder = "search title or description"
	search.Prompt = "/ "
	search.CharLimit = 50
	return tasksModel{
		ws:      ws,
		now:     now,
		sortKey: store.SortDueDate,
		order:   store.Asc,
		search:  search,
		tf:      &taskForm{},
		confirm: new(bool),
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.search.Width = max(10, w-12)
}

func (t tasksModel) capturing() bool {
	return t.formActive || t.searching
}

type tasksDataMsg struct {
	tasks    []store.Task
	projects []store.Project
	stats    store.TaskStats
}

func (t tasksModel) refresh() tea.Cmd {
	mode, sortKey, order := t.mode, t.sortKey, t.order
	query := strings.TrimSpace(t.search.Value())
	return func() tea.Msg {
		repo := t.ws.Tasks
		var items []store.Task
		switch mode {
		case tasksPending:
			pending := false
			items = repo.Filter(store.TaskFilter{Completed: &pending})
		case tasksToday:
			items = repo.Today()
		case tasksOverdue:
			items = repo.Overdue()
		case tasksUpcoming:
			items = repo.Upcoming(upcomingDays)
		default:
			items = repo.Sort(sortKey, order)
		}
		if mode != tasksAll && mode != tasksUpcoming {
			store.SortTasks(items, sortKey, order)
		}
		if query != "" {
			hits := make(map[string]bool)
			for _, h := range repo.Search(query) {
				hits[h.ID] = true
			}
			kept := items[:0]
			for _, it := range items {
				if hits[it.ID] {
					kept = append(kept, it)
				}
			}
			items = kept
		}
		return tasksDataMsg{tasks: items, projects: t.ws.Projects.All(), stats: repo.Stats()}
	}
}

func (t tasksModel) current() (store.Task, bool) {
	if t.cursor < 0 || t.cursor >= len(t.tasks) {
		return store.Task{}, false
	}
	return t.tasks[t.cursor], true
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if data, ok := msg.(tasksDataMsg); ok {
		return t.load(data), nil
	}
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if t.searching {
			return t.updateSearch(msg)
		}
		return t.updateList(msg)
	}
	return t, nil
}

func (t tasksModel) load(msg tasksDataMsg) tasksModel {
	t.tasks = msg.tasks
	t.stats = msg.stats
	t.projects = make(map[string]store.Project, len(msg.projects))
	for _, p := range msg.projects {
		t.projects[p.ID] = p
	}
	t.cursor = clampCursor(t.cursor, len(t.tasks))
	return t
}

func (t tasksModel) updateSearch(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		t.searching = false
		t.search.Blur()
		return t, nil
	case key.Matches(msg, keys.Back):
		t.searching = false
		t.search.Blur()
		t.search.SetValue("")
		return t, t.refresh()
	}
	var cmd tea.Cmd
	t.search, cmd = t.search.Update(msg)
	t.cursor = 0
	return t, tea.Batch(cmd, t.refresh())
}

func (t tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(t.tasks)-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.Left):
		t.mode = (t.mode + taskMode(len(taskModeNames)) - 1) % taskMode(len(taskModeNames))
		t.cursor = 0
		return t, t.refresh()
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Filter):
		t.mode = (t.mode + 1) % taskMode(len(taskModeNames))
		t.cursor = 0
		return t, t.refresh()
	case key.Matches(msg, keys.Sort):
		t.sortKey = cycle(taskSortKeys, t.sortKey)
		return t, t.refresh()
	case key.Matches(msg, keys.Reverse):
		t.order = cycle([]store.Order{store.Asc, store.Desc}, t.order)
		return t, t.refresh()
	case key.Matches(msg, keys.Search):
		t.searching = true
		cmd := t.search.Focus()
		return t, cmd
	case key.Matches(msg, keys.Back):
		if t.search.Value() != "" {
			t.search.SetValue("")
			return t, t.refresh()
		}
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		if task, ok := t.current(); ok {
			updated, err := t.ws.ToggleTask(task.ID)
			if err != nil {
				return t, failed(err)
			}
			if updated.Completed {
				return t, mutated("Completed %q", updated.Title)
			}
			return t, mutated("Reopened %q", updated.Title)
		}
	case key.Matches(msg, keys.New):
		*t.tf = taskForm{priority: store.PriorityMedium}
		if t.mode == tasksToday {
			t.tf.dueDate = dates.Today(t.now())
		}
		return t.openForm("task", t.tf.taskFields(t.projectList()))
	case key.Matches(msg, keys.Edit):
		if task, ok := t.current(); ok {
			*t.tf = taskForm{
				title:         task.Title,
				description:   task.Description,
				projectID:     task.ProjectID,
				dueDate:       task.DueDate,
				dueTime:       task.DueTime,
				priority:      cmp.Or(task.Priority, store.PriorityMedium),
				estimatedTime: task.EstimatedTime,
			}
			t.editingID = task.ID
			return t.openForm("edit_task", t.tf.taskFields(t.projectList()))
		}
	case key.Matches(msg, keys.Delete):
		if task, ok := t.current(); ok {
			t.editingID = task.ID
			return t.openForm("delete", confirmForm(fmt.Sprintf("Delete %q?", task.Title), t.confirm))
		}
	}
	return t, nil
}

// projectList returns the known projects sorted by name for the picker.
func (t tasksModel) projectList() []store.Project {
	out := make([]store.Project, 0, len(t.projects))
	for _, p := range t.projects {
		out = append(out, p)
	}
	store.SortProjects(out, store.SortName, store.Asc)
	return out
}

func (t tasksModel) openForm(kind string, form *huh.Form) (tasksModel, tea.Cmd) {
	t.formType = kind
	t.form = form
	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State != huh.StateCompleted {
		return t, cmd
	}
	t.formActive = false
	t.form = nil

	switch t.formType {
	case "task":
		created, err := t.ws.Tasks.Create(t.tf.taskInput())
		if err != nil {
			return t, failed(err)
		}
		return t, mutated("Created %q", created.Title)
	case "edit_task":
		updated, err := t.ws.Tasks.Update(t.editingID, t.tf.taskPatch())
		if err != nil {
			return t, failed(err)
		}
		return t, mutated("Saved %q", updated.Title)
	case "delete":
		if !*t.confirm {
			return t, nil
		}
		if !t.ws.Tasks.Delete(t.editingID) {
			return t, notice("Task was already deleted")
		}
		return t, mutated("Deleted task")
	}
	return t, nil
}

func (t tasksModel) view() string {
	w := t.width - 4
	if t.formActive && t.form != nil {
		title := "New Task"
		switch t.formType {
		case "edit_task":
			title = "Edit Task"
		case "delete":
			title = "Delete Task"
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", t.form.View()),
		)
	}

	var tabs []string
	for i, name := range taskModeNames {
		if taskMode(i) == t.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Tasks"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))

	st := t.stats
	summary := mutedStyle.Render(fmt.Sprintf("%d total  %d pending  %d overdue  %d due today (%d done)  %d urgent  %d%% complete",
		st.Total, st.Pending, st.Overdue, st.Today, st.TodayCompleted, st.Urgent, st.CompletionRate))

	arrow := "↓"
	if t.order == store.Asc {
		arrow = "↑"
	}
	sortInfo := mutedStyle.Render(fmt.Sprintf("sort: %s %s", t.sortKey, arrow))
	if t.mode == tasksUpcoming {
		sortInfo = mutedStyle.Render(fmt.Sprintf("next %d days by due date", upcomingDays))
	}

	rows := []string{header, summary, sortInfo}
	if t.searching || t.search.Value() != "" {
		rows = append(rows, t.search.View())
	}
	rows = append(rows, "")

	if len(t.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing here. Press n to add a task."))
	}
	now := t.now()
	for i, task := range t.tasks {
		rows = append(rows, t.renderRow(task, i == t.cursor, now))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: toggle  n: new  e: edit  d: delete  ←/→: tab  o/r: sort  /: search"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t tasksModel) renderRow(task store.Task, selected bool, now time.Time) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	check := "[ ]"
	title := style.Render(task.Title)
	if task.Completed {
		check = successStyle.Render("[x]")
		title = doneStyle.Render(task.Title)
	}

	meta := []string{priorityStyle(task.Priority).Render(task.Priority.Label())}
	if task.ProjectID != "" {
		if p, ok := t.projects[task.ProjectID]; ok {
			meta = append(meta, dot(p.Color)+" "+mutedStyle.Render(p.Name))
		}
	}
	if task.DueDate != "" {
		due := task.DueDate
		if task.DueTime != "" {
			due += " " + task.DueTime
		}
		switch {
		case dates.IsOverdue(task.DueDate, task.Completed, now):
			meta = append(meta, errorStyle.Render("overdue "+due))
		case task.DueDate == dates.Today(now):
			meta = append(meta, warningStyle.Render("today "+task.DueTime))
		default:
			meta = append(meta, mutedStyle.Render("due "+due))
		}
	}
	if task.EstimatedTime != "" {
		meta = append(meta, mutedStyle.Render(task.EstimatedTime))
	}
	if task.CompletedAt != nil {
		meta = append(meta, mutedStyle.Render("done "+ago(task.CompletedAt.Time(), now)))
	}
	return fmt.Sprintf("%s%s %s  %s", cursor, check, title, strings.Join(meta, "  "))
}
