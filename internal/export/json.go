package export

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/sadopc/focusboard/internal/store"
)

// Snapshot is everything a JSON export carries.
type Snapshot struct {
	Projects []store.Project
	Tasks    []store.Task
	Stats    []store.DailyStat
}

type jsonExport struct {
	ExportedAt string          `json:"exported_at"`
	Counts     jsonCounts      `json:"counts"`
	Projects   []jsonProject   `json:"projects"`
	Tasks      []store.Task    `json:"tasks"`
	Stats      []jsonDailyStat `json:"stats"`
}

type jsonCounts struct {
	Projects     int `json:"projects"`
	ProjectTasks int `json:"project_tasks"`
	Tasks        int `json:"tasks"`
	Days         int `json:"days"`
}

type jsonProject struct {
	store.Project
	Progress int    `json:"progress"`
	ColorHex string `json:"color_hex"`
}

type jsonDailyStat struct {
	store.DailyStat
	Focus string `json:"focus"`
}

// ToJSON writes s as an indented document stamped with the export time.
func ToJSON(s Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Counts: jsonCounts{
			Projects: len(s.Projects),
			Tasks:    len(s.Tasks),
			Days:     len(s.Stats),
		},
		Projects: make([]jsonProject, 0, len(s.Projects)),
		Tasks:    s.Tasks,
		Stats:    make([]jsonDailyStat, 0, len(s.Stats)),
	}
	if export.Tasks == nil {
		export.Tasks = []store.Task{}
	}

	for _, p := range s.Projects {
		export.Counts.ProjectTasks += p.TotalTasks
		export.Projects = append(export.Projects, jsonProject{
			Project:  p,
			Progress: p.Progress(),
			ColorHex: store.ColorHex(p.Color),
		})
	}
	for _, d := range s.Stats {
		export.Stats = append(export.Stats, jsonDailyStat{DailyStat: d, Focus: formatMinutes(d.FocusTime)})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.RFC3339)
}
