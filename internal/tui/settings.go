package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/focusboard/internal/config"
	"github.com/sadopc/focusboard/internal/store"
)

var logLevels = []string{"debug", "info", "warn", "error"}

type settingsForm struct {
	dbPath        string
	logFile       string
	logLevel      string
	syncInterval  string
	focusHours    string
	retentionDays string
}

func (f *settingsForm) load(c config.Config) {
	*f = settingsForm{
		dbPath:        c.DBPath,
		logFile:       c.LogFile,
		logLevel:      c.LogLevel,
		syncInterval:  c.SyncInterval,
		focusHours:    strconv.FormatFloat(float64(c.FocusMinutes)/60, 'f', -1, 64),
		retentionDays: strconv.Itoa(c.RetentionDays),
	}
}

// apply copies the form over c. Inputs were validated by the form.
func (f *settingsForm) apply(c config.Config) config.Config {
	c.DBPath = strings.TrimSpace(f.dbPath)
	c.LogFile = strings.TrimSpace(f.logFile)
	c.LogLevel = f.logLevel
	c.SyncInterval = strings.TrimSpace(f.syncInterval)
	if h, err := strconv.ParseFloat(strings.TrimSpace(f.focusHours), 64); err == nil {
		c.FocusMinutes = int(h * 60)
	}
	if d, err := strconv.Atoi(strings.TrimSpace(f.retentionDays)); err == nil {
		c.RetentionDays = d
	}
	return c
}

type settingsModel struct {
	ws     *store.Workspace
	width  int
	height int

	cfg  config.Config
	path string

	formActive bool
	form       *huh.Form
	formType   string // "edit", "reset"

	sf      *settingsForm
	confirm *bool
}

func newSettingsModel(ws *store.Workspace, cfg config.Config, path string) settingsModel {
	return settingsModel{
		ws:      ws,
		cfg:     cfg,
		path:    path,
		sf:      &settingsForm{},
		confirm: new(bool),
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// configSavedMsg carries settings that were written to disk.
type configSavedMsg struct {
	cfg     config.Config
	cleaned int
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case configSavedMsg:
		s.cfg = msg.cfg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Delete):
			s.formType = "reset"
			s.form = confirmForm("Erase every project, task and daily stat?", s.confirm)
			s.formActive = true
			return s, s.form.Init()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	s.sf.load(s.cfg)
	levelOptions := make([]huh.Option[string], len(logLevels))
	for i, l := range logLevels {
		levelOptions[i] = huh.NewOption(l, l)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Weekly focus target (hours)").Validate(nonNegative(strconv.ParseFloat)).Value(&s.sf.focusHours),
			huh.NewInput().Title("Keep daily stats (days)").Description("Older days are removed on save and at startup").
				Validate(nonNegative(func(v string, _ int) (int, error) { return strconv.Atoi(v) })).Value(&s.sf.retentionDays),
			huh.NewInput().Title("Sync interval").Description("How often to pick up changes from other windows; 0 disables").
				Validate(validInterval).Value(&s.sf.syncInterval),
		).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("Database file").Validate(required("database file")).Value(&s.sf.dbPath),
			huh.NewInput().Title("Log file").Value(&s.sf.logFile),
			huh.NewSelect[string]().Title("Log level").Options(levelOptions...).Value(&s.sf.logLevel),
		).Title("Storage (applies on restart)"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formType = "edit"
	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State != huh.StateCompleted {
		return s, cmd
	}
	s.formActive = false
	s.form = nil

	if s.formType == "reset" {
		if !*s.confirm {
			return s, nil
		}
		s.ws.Reset()
		log.Warn("workspace reset from settings")
		return s, mutated("All data erased")
	}
	return s.save()
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	next := s.sf.apply(s.cfg)
	if err := next.Validate(); err != nil {
		return s, failed(err)
	}
	if err := next.Save(s.path); err != nil {
		return s, failed(err)
	}
	s.cfg = next
	cleaned := s.ws.Stats.CleanOld(next.RetentionDays)
	log.Info("settings saved", "path", s.path, "cleaned_days", cleaned)
	return s, func() tea.Msg { return configSavedMsg{cfg: next, cleaned: cleaned} }
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	interval := s.cfg.SyncInterval
	if d, err := s.cfg.Interval(); err == nil && d == 0 {
		interval = "off"
	}
	settings := [][2]string{
		{"Weekly focus target", formatMinutes(s.cfg.FocusMinutes)},
		{"Keep daily stats", fmt.Sprintf("%d days", s.cfg.RetentionDays)},
		{"Sync interval", interval},
		{"Database file", s.cfg.DBPath},
		{"Log file", s.cfg.LogFile},
		{"Log level", s.cfg.LogLevel},
		{"Config file", s.path},
	}

	rows := []string{title, ""}
	for _, kv := range settings {
		label := lipgloss.NewStyle().Width(24).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(kv[1])))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit settings  d: erase all data"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func nonNegative[T int | float64](parse func(string, int) (T, error)) func(string) error {
	return func(v string) error {
		n, err := parse(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.New("enter a number")
		}
		if n < 0 {
			return errors.New("must not be negative")
		}
		return nil
	}
}

func validInterval(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.New("use a duration like 2s or 500ms")
	}
	if d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
