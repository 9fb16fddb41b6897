package tui

import (
	"cmp"
	"fmt"
	"slices"
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

var projectSortKeys = []store.SortKey{store.SortLastModified, store.SortName, store.SortProgress, store.SortPriority}

// projectFilters cycles through "all" and then each status.
var projectFilters = append([]store.Status{""}, store.Statuses...)

type projectsModel struct {
	ws     *store.Workspace
	now    func() time.Time
	width  int
	height int

	projects     []store.Project
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of the project under the cursor
	openID       string

	sortKey   store.SortKey
	order     store.Order
	status    store.Status
	search    textinput.Model
	searching bool

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project", "task", "edit_task", "delete"

	pf      *projectForm
	tf      *taskForm
	confirm *bool
}

func newProjectsModel(ws *store.Workspace, now func() time.Time) projectsModel {
	search := textinput.New()
	search.Placeholder = "search name or description"
	search.Prompt = "/ "
	search.CharLimit = 50
	return projectsModel{
		ws:      ws,
		now:     now,
		sortKey: store.SortLastModified,
		order:   store.Desc,
		search:  search,
		pf:      &projectForm{},
		tf:      &taskForm{},
		confirm: new(bool),
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.search.Width = max(10, w-12)
}

// capturing reports whether every key press belongs to this view.
func (p projectsModel) capturing() bool {
	return p.formActive || p.searching
}

type projectsDataMsg struct {
	projects []store.Project
}

func (p projectsModel) refresh() tea.Cmd {
	query := strings.TrimSpace(p.search.Value())
	status, sortKey, order := p.status, p.sortKey, p.order
	return func() tea.Msg {
		var items []store.Project
		switch {
		case query != "":
			items = p.ws.Projects.Search(query)
			if status != "" {
				items = slices.DeleteFunc(items, func(x store.Project) bool { return x.Status != status })
			}
		case status != "":
			items = p.ws.Projects.ByStatus(status)
		default:
			return projectsDataMsg{projects: p.ws.Projects.Sort(sortKey, order)}
		}
		store.SortProjects(items, sortKey, order)
		return projectsDataMsg{projects: items}
	}
}

func (p projectsModel) current() (store.Project, bool) {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return store.Project{}, false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if data, ok := msg.(projectsDataMsg); ok {
		return p.load(data), nil
	}
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if p.searching {
			return p.updateSearch(msg)
		}
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

// load takes fresh data, keeping the open project under the cursor.
func (p projectsModel) load(msg projectsDataMsg) projectsModel {
	p.projects = msg.projects
	p.cursor = clampCursor(p.cursor, len(p.projects))
	if p.viewingTasks {
		i := slices.IndexFunc(p.projects, func(x store.Project) bool { return x.ID == p.openID })
		if i < 0 {
			p.viewingTasks = false
		} else {
			p.cursor = i
			p.taskCursor = clampCursor(p.taskCursor, len(p.projects[i].Tasks))
		}
	}
	return p
}

func (p projectsModel) updateSearch(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		p.searching = false
		p.search.Blur()
		return p, nil
	case key.Matches(msg, keys.Back):
		p.searching = false
		p.search.Blur()
		p.search.SetValue("")
		return p, p.refresh()
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	p.cursor = 0
	return p, tea.Batch(cmd, p.refresh())
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if proj, ok := p.current(); ok {
			p.viewingTasks = true
			p.openID = proj.ID
			p.taskCursor = 0
		}
	case key.Matches(msg, keys.Search):
		p.searching = true
		cmd := p.search.Focus()
		return p, cmd
	case key.Matches(msg, keys.Back):
		if p.search.Value() != "" || p.status != "" {
			p.search.SetValue("")
			p.status = ""
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Sort):
		p.sortKey = cycle(projectSortKeys, p.sortKey)
		return p, p.refresh()
	case key.Matches(msg, keys.Reverse):
		p.order = cycle([]store.Order{store.Asc, store.Desc}, p.order)
		return p, p.refresh()
	case key.Matches(msg, keys.Filter):
		p.status = cycle(projectFilters, p.status)
		p.cursor = 0
		return p, p.refresh()
	case key.Matches(msg, keys.New):
		return p.showNewProjectForm()
	case key.Matches(msg, keys.Edit):
		if proj, ok := p.current(); ok {
			return p.showEditProjectForm(proj)
		}
	case key.Matches(msg, keys.Status):
		if proj, ok := p.current(); ok {
			next := cycle(store.Statuses, proj.Status)
			if _, err := p.ws.Projects.Update(proj.ID, store.ProjectPatch{Status: &next}); err != nil {
				return p, failed(err)
			}
			return p, mutated("%s is now %s", proj.Name, next.Label())
		}
	case key.Matches(msg, keys.Delete):
		if proj, ok := p.current(); ok {
			p.formType = "delete"
			p.openID = proj.ID
			p.form = confirmForm(fmt.Sprintf("Delete %q and its %d tasks?", proj.Name, proj.TotalTasks), p.confirm)
			p.formActive = true
			return p, p.form.Init()
		}
	}
	return p, nil
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	proj, ok := p.current()
	if !ok {
		p.viewingTasks = false
		return p, nil
	}
	task, hasTask := store.ProjectTask{}, len(proj.Tasks) > 0
	if hasTask {
		task = proj.Tasks[clampCursor(p.taskCursor, len(proj.Tasks))]
	}

	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(proj.Tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		if hasTask {
			t, err := p.ws.ToggleProjectTask(proj.ID, task.ID)
			if err != nil {
				return p, failed(err)
			}
			if t.Completed {
				return p, mutated("Completed %q", t.Text)
			}
			return p, mutated("Reopened %q", t.Text)
		}
	case key.Matches(msg, keys.New):
		*p.tf = taskForm{priority: store.PriorityMedium}
		return p.openForm("task", p.tf.projectTaskFields())
	case key.Matches(msg, keys.Edit):
		if hasTask {
			*p.tf = taskForm{
				title:         task.Text,
				estimatedTime: task.EstimatedTime,
				dueDate:       task.DueDate,
				priority:      cmp.Or(task.Priority, store.PriorityMedium),
			}
			return p.openForm("edit_task", p.tf.projectTaskFields())
		}
	case key.Matches(msg, keys.Delete):
		if hasTask {
			if _, err := p.ws.Projects.RemoveTask(proj.ID, task.ID); err != nil {
				return p, failed(err)
			}
			return p, mutated("Removed %q", task.Text)
		}
	}
	return p, nil
}

func (p projectsModel) showNewProjectForm() (projectsModel, tea.Cmd) {
	*p.pf = projectForm{
		color:     store.DefaultColor,
		icon:      store.DefaultIcon,
		priority:  store.PriorityMedium,
		status:    store.StatusActive,
		startDate: dates.Today(p.now()),
	}
	return p.openForm("project", p.pf.fields(true))
}

func (p projectsModel) showEditProjectForm(proj store.Project) (projectsModel, tea.Cmd) {
	p.pf.load(proj)
	p.openID = proj.ID
	return p.openForm("edit_project", p.pf.fields(false))
}

func (p projectsModel) openForm(kind string, form *huh.Form) (projectsModel, tea.Cmd) {
	p.formType = kind
	p.form = form
	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}
	p.formActive = false
	p.form = nil
	return p.submit()
}

// submit applies the completed form.
func (p projectsModel) submit() (projectsModel, tea.Cmd) {
	proj, _ := p.current()
	switch p.formType {
	case "project":
		created, err := p.ws.Projects.Create(p.pf.input())
		if err != nil {
			return p, failed(err)
		}
		p.sortKey, p.order, p.cursor = store.SortLastModified, store.Desc, 0
		return p, mutated("Created %s", created.Name)
	case "edit_project":
		updated, err := p.ws.Projects.Update(p.openID, p.pf.patch())
		if err != nil {
			return p, failed(err)
		}
		return p, mutated("Saved %s", updated.Name)
	case "delete":
		if !*p.confirm {
			return p, nil
		}
		removed, detached := p.ws.DeleteProject(p.openID)
		if !removed {
			return p, notice("Project was already deleted")
		}
		if detached > 0 {
			return p, mutated("Deleted project, %d linked tasks kept without project", detached)
		}
		return p, mutated("Deleted project")
	case "task":
		t, err := p.ws.Projects.AddTask(proj.ID, p.tf.projectTaskInput())
		if err != nil {
			return p, failed(err)
		}
		p.taskCursor = len(proj.Tasks)
		return p, mutated("Added %q", t.Text)
	case "edit_task":
		if len(proj.Tasks) == 0 {
			return p, nil
		}
		task := proj.Tasks[clampCursor(p.taskCursor, len(proj.Tasks))]
		t, err := p.ws.Projects.UpdateTask(proj.ID, task.ID, p.tf.projectTaskPatch())
		if err != nil {
			return p, failed(err)
		}
		return p, mutated("Saved %q", t.Text)
	}
	return p, nil
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		var title string
		switch p.formType {
		case "edit_project":
			title = "Edit Project"
		case "task":
			title = "New Task"
		case "edit_task":
			title = "Edit Task"
		case "delete":
			title = "Delete Project"
		default:
			title = "New Project"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderToolbar() string {
	filter := "all"
	if p.status != "" {
		filter = p.status.Label()
	}
	arrow := "↓"
	if p.order == store.Asc {
		arrow = "↑"
	}
	info := mutedStyle.Render(fmt.Sprintf("sort: %s %s  filter: %s", p.sortKey, arrow, filter))
	if p.searching || p.search.Value() != "" {
		return lipgloss.JoinVertical(lipgloss.Left, p.search.View(), info)
	}
	return info
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")
	toolbar := p.renderToolbar()

	if len(p.projects) == 0 {
		hint := "No projects yet. Press n to create one."
		if p.search.Value() != "" || p.status != "" {
			hint = "No project matches. Press esc to clear the filter."
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, toolbar, "", mutedStyle.Render(hint))
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, toolbar, "")

	header := mutedStyle.Render(fmt.Sprintf("     %-26s %-10s %-8s %-9s %-14s %s", "Name", "Status", "Priority", "Progress", "Timeline", "Modified"))
	rows = append(rows, header)

	now := p.now()
	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		name := fmt.Sprintf("%s%s %s %-24s", cursor, dot(proj.Color), store.IconGlyph(proj.Icon), truncate(proj.Name, 24))
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			style.Render(name), " ",
			statusStyle(proj.Status).Width(10).Render(proj.Status.Label()), " ",
			priorityStyle(proj.Priority).Width(8).Render(proj.Priority.Label()), " ",
			lipgloss.NewStyle().Width(9).Render(fmt.Sprintf("%3d%% %d/%d", proj.Progress(), proj.CompletedTasks, proj.TotalTasks)), " ",
			lipgloss.NewStyle().Width(14).Render(timeline(proj, now)), " ",
			mutedStyle.Render(ago(proj.LastModified.Time(), now)),
		)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  t: status  d: delete  enter: tasks  o/r: sort  f: filter  /: search"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj, _ := p.current()
	title := titleStyle.Render(fmt.Sprintf("%s %s %s: Tasks", dot(proj.Color), store.IconGlyph(proj.Icon), proj.Name))
	summary := mutedStyle.Render(fmt.Sprintf("%d of %d done (%d%%)  %s", proj.CompletedTasks, proj.TotalTasks, proj.Progress(), timeline(proj, p.now())))

	if len(proj.Tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			summary,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, summary, "")

	now := p.now()
	for i, task := range proj.Tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		text := style.Render(task.Text)
		if task.Completed {
			check = successStyle.Render("[x]")
			text = doneStyle.Render(task.Text)
		}
		var meta []string
		if task.Priority != "" {
			meta = append(meta, priorityStyle(task.Priority).Render(task.Priority.Label()))
		}
		if task.EstimatedTime != "" {
			meta = append(meta, mutedStyle.Render(task.EstimatedTime))
		}
		if task.DueDate != "" {
			due := mutedStyle.Render("due " + task.DueDate)
			if dates.IsOverdue(task.DueDate, task.Completed, now) {
				due = errorStyle.Render("overdue " + task.DueDate)
			}
			meta = append(meta, due)
		}
		if task.CompletedAt != nil {
			meta = append(meta, mutedStyle.Render("done "+ago(task.CompletedAt.Time(), now)))
		}
		rows = append(rows, fmt.Sprintf("%s%s %s  %s", cursor, check, text, strings.Join(meta, "  ")))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: toggle  n: new task  e: edit  d: remove  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// timeline renders where today sits in a project's date window.
func timeline(p store.Project, now time.Time) string {
	if p.EndDate == "" {
		return mutedStyle.Render("from " + p.StartDate)
	}
	days, ok := dates.DaysRemaining(p.EndDate, now)
	switch {
	case !ok:
		return ""
	case p.Status == store.StatusDone:
		return mutedStyle.Render("ended " + p.EndDate)
	case days < 0:
		return errorStyle.Render(fmt.Sprintf("%dd late", -days))
	case days == 0:
		return warningStyle.Render("due today")
	}
	return fmt.Sprintf("%dd left %d%%", days, dates.ElapsedPercent(p.StartDate, p.EndDate, now))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
