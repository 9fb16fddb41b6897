package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/focusboard/internal/dates"
	"github.com/sadopc/focusboard/internal/store"
)

// Form values live behind pointers so they survive the value copies Bubble
// Tea makes of every model.

type projectForm struct {
	name        string
	description string
	color       string
	icon        string
	priority    store.Priority
	status      store.Status
	startDate   string
	endDate     string
	tasks       string // one per line, create only
}

func (f *projectForm) input() store.ProjectInput {
	return store.ProjectInput{
		Name:        f.name,
		Description: f.description,
		Color:       f.color,
		Icon:        f.icon,
		StartDate:   strings.TrimSpace(f.startDate),
		EndDate:     strings.TrimSpace(f.endDate),
		Priority:    f.priority,
		Status:      f.status,
		Tasks:       splitLines(f.tasks),
	}
}

func (f *projectForm) patch() store.ProjectPatch {
	start := strings.TrimSpace(f.startDate)
	end := strings.TrimSpace(f.endDate)
	return store.ProjectPatch{
		Name:        &f.name,
		Description: &f.description,
		Color:       &f.color,
		Icon:        &f.icon,
		StartDate:   &start,
		EndDate:     &end,
		Priority:    &f.priority,
		Status:      &f.status,
	}
}

func (f *projectForm) load(p store.Project) {
	*f = projectForm{
		name:        p.Name,
		description: p.Description,
		color:       p.Color,
		icon:        p.Icon,
		priority:    p.Priority,
		status:      p.Status,
		startDate:   p.StartDate,
		endDate:     p.EndDate,
	}
}

// fields builds the form; withTasks adds the initial task list.
func (f *projectForm) fields(withTasks bool) *huh.Form {
	details := huh.NewGroup(
		huh.NewInput().Title("Name").CharLimit(50).Validate(required("name")).Value(&f.name),
		huh.NewText().Title("Description").CharLimit(500).Lines(3).Value(&f.description),
		huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(&f.color),
		huh.NewSelect[string]().Title("Icon").Options(iconOptions()...).Height(6).Value(&f.icon),
	).Title("Project")
	planning := huh.NewGroup(
		huh.NewSelect[store.Priority]().Title("Priority").Options(priorityOptions()...).Value(&f.priority),
		huh.NewSelect[store.Status]().Title("Status").Options(statusOptions()...).Value(&f.status),
		huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Validate(dateField(true)).Value(&f.startDate),
		huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD, optional").Validate(dateField(false)).Value(&f.endDate),
	).Title("Planning")
	groups := []*huh.Group{details, planning}
	if withTasks {
		groups = append(groups, huh.NewGroup(
			huh.NewText().Title("Tasks").Description("One per line").Lines(5).Value(&f.tasks),
		).Title("Tasks"))
	}
	return huh.NewForm(groups...).WithShowHelp(true).WithShowErrors(true)
}

type taskForm struct {
	title         string
	description   string
	projectID     string
	dueDate       string
	dueTime       string
	priority      store.Priority
	estimatedTime string
}

func (f *taskForm) projectTaskInput() store.ProjectTaskInput {
	return store.ProjectTaskInput{
		Text:          f.title,
		EstimatedTime: strings.TrimSpace(f.estimatedTime),
		DueDate:       strings.TrimSpace(f.dueDate),
		Priority:      f.priority,
	}
}

func (f *taskForm) projectTaskPatch() store.ProjectTaskPatch {
	in := f.projectTaskInput()
	return store.ProjectTaskPatch{
		Text:          &in.Text,
		EstimatedTime: &in.EstimatedTime,
		DueDate:       &in.DueDate,
		Priority:      &in.Priority,
	}
}

func (f *taskForm) taskInput() store.TaskInput {
	return store.TaskInput{
		Title:         f.title,
		Description:   f.description,
		ProjectID:     f.projectID,
		DueDate:       strings.TrimSpace(f.dueDate),
		DueTime:       strings.TrimSpace(f.dueTime),
		Priority:      f.priority,
		EstimatedTime: strings.TrimSpace(f.estimatedTime),
	}
}

func (f *taskForm) taskPatch() store.TaskPatch {
	in := f.taskInput()
	return store.TaskPatch{
		Title:         &in.Title,
		Description:   &in.Description,
		ProjectID:     &in.ProjectID,
		DueDate:       &in.DueDate,
		DueTime:       &in.DueTime,
		Priority:      &in.Priority,
		EstimatedTime: &in.EstimatedTime,
	}
}

// projectTaskFields is the short form used for tasks embedded in a project.
func (f *taskForm) projectTaskFields() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").CharLimit(100).Validate(required("task")).Value(&f.title),
			huh.NewInput().Title("Estimated time").Placeholder("e.g. 2h 30m").CharLimit(20).Value(&f.estimatedTime),
			huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD, optional").Validate(dateField(false)).Value(&f.dueDate),
			huh.NewSelect[store.Priority]().Title("Priority").Options(priorityOptions()...).Value(&f.priority),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// taskFields is the full standalone task form. projects feeds the project
// picker.
func (f *taskForm) taskFields(projects []store.Project) *huh.Form {
	projectOptions := []huh.Option[string]{huh.NewOption("No project", "")}
	for _, p := range projects {
		projectOptions = append(projectOptions, huh.NewOption(store.IconGlyph(p.Icon)+" "+p.Name, p.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").CharLimit(100).Validate(required("title")).Value(&f.title),
			huh.NewText().Title("Description").CharLimit(500).Lines(3).Value(&f.description),
			huh.NewSelect[string]().Title("Project").Options(projectOptions...).Height(6).Value(&f.projectID),
		).Title("Task"),
		huh.NewGroup(
			huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD, optional").Validate(dateField(false)).Value(&f.dueDate),
			huh.NewInput().Title("Due time").Placeholder("HH:MM, optional").Validate(timeField).Value(&f.dueTime),
			huh.NewSelect[store.Priority]().Title("Priority").Options(priorityOptions()...).Value(&f.priority),
			huh.NewInput().Title("Estimated time").Placeholder("e.g. 45m").CharLimit(20).Value(&f.estimatedTime),
		).Title("Schedule"),
	).WithShowHelp(true).WithShowErrors(true)
}

func confirmForm(title string, ok *bool) *huh.Form {
	*ok = false
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Cancel").Value(ok),
		),
	).WithShowHelp(true)
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(store.ColorKeys))
	for i, c := range store.ColorKeys {
		opts[i] = huh.NewOption(dot(c)+" "+c, c)
	}
	return opts
}

func iconOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(store.IconKeys))
	for i, k := range store.IconKeys {
		opts[i] = huh.NewOption(store.Icons[k]+" "+k, k)
	}
	return opts
}

func priorityOptions() []huh.Option[store.Priority] {
	opts := make([]huh.Option[store.Priority], len(store.Priorities))
	for i, p := range store.Priorities {
		opts[i] = huh.NewOption(p.Label(), p)
	}
	return opts
}

func statusOptions() []huh.Option[store.Status] {
	opts := make([]huh.Option[store.Status], len(store.Statuses))
	for i, s := range store.Statuses {
		opts[i] = huh.NewOption(s.Label(), s)
	}
	return opts
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func dateField(mandatory bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if mandatory {
				return errors.New("date is required")
			}
			return nil
		}
		if _, err := dates.Parse(s); err != nil {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}
}

func timeField(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

// splitLines returns the non-blank lines of s, trimmed.
func splitLines(s string) []string {
	var out []string
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
