package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sadopc/focusboard/internal/store"
)

func sampleData() Snapshot {
	done := store.MillisOf(time.Date(2026, time.October, 20, 14, 0, 0, 0, time.UTC))
	projects := []store.Project{
		{
			ID:       "p1",
			Name:     "Project Alpha",
			Color:    "green",
			Status:   store.StatusActive,
			Priority: store.PriorityHigh,
			Tasks: []store.ProjectTask{
				{ID: "t1", Text: "design", Completed: true, CompletedAt: &done, EstimatedTime: "2h"},
				{ID: "t2", Text: "build"},
			},
			TotalTasks:     2,
			CompletedTasks: 1,
			StartDate:      "2026-10-01",
			EndDate:        "2026-10-31",
		},
		{ID: "p2", Name: "Project Beta", Status: store.StatusPlanning, Priority: store.PriorityLow, StartDate: "2026-11-01"},
	}
	tasks := []store.Task{{ID: "s1", Title: "call", ProjectID: "p1", Priority: store.PriorityMedium}}
	stats := []store.DailyStat{{Date: "2026-10-20", TasksCompleted: 1, TasksTotal: 2, FocusTime: 95, Productivity: 50}}
	return Snapshot{Projects: projects, Tasks: tasks, Stats: stats}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := ToCSV(sampleData().Projects, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 2 task rows + 1 empty project row
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "Project Alpha" || row[1] != "Active" || row[2] != "High" || row[5] != "50" {
		t.Fatalf("project columns: %q", row)
	}
	if row[6] != "design" || row[7] != "true" || row[9] != "2h" {
		t.Fatalf("task columns: %q", row)
	}
	if _, err := time.Parse(time.RFC3339, row[8]); err != nil {
		t.Fatalf("completed at not RFC3339: %q", row[8])
	}

	if records[2][6] != "build" || records[2][8] != "" {
		t.Fatalf("pending task row: %q", records[2])
	}
	if records[2][0] != "Project Alpha" {
		t.Fatalf("rows must not share a backing array: %q", records[2])
	}

	empty := records[3]
	if empty[0] != "Project Beta" || empty[6] != "" || empty[5] != "0" {
		t.Fatalf("project without tasks: %q", empty)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVReportsFlushError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	if err := ToCSV(sampleData().Projects, "/dev/full"); err == nil {
		t.Fatal("expected the failed flush to be reported")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	projects := []store.Project{{
		Name:       `Projet "Spécial"`,
		Tasks:      []store.ProjectTask{{ID: "1", Text: `with "quotes", commas`}},
		TotalTasks: 1,
	}}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := ToCSV(projects, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][0] != `Projet "Spécial"` || records[1][6] != `with "quotes", commas` {
		t.Fatalf("mangled row: %q", records[1])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	want := jsonCounts{Projects: 2, ProjectTasks: 2, Tasks: 1, Days: 1}
	if result.Counts != want {
		t.Fatalf("counts = %+v, want %+v", result.Counts, want)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not RFC3339: %q", result.ExportedAt)
	}

	p := result.Projects[0]
	if p.Name != "Project Alpha" || p.Progress != 50 || p.ColorHex != "#10b981" {
		t.Fatalf("project = %+v", p)
	}
	if len(p.Tasks) != 2 || p.Tasks[0].CompletedAt == nil {
		t.Fatalf("tasks lost: %+v", p.Tasks)
	}
	if result.Stats[0].Focus != "01:35" {
		t.Fatalf("focus = %q", result.Stats[0].Focus)
	}
	if result.Tasks[0].ProjectID != "p1" {
		t.Fatalf("standalone task = %+v", result.Tasks[0])
	}
}

func TestToJSONEmptyUsesArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(Snapshot{}, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	for _, field := range []string{`"projects": []`, `"tasks": []`, `"stats": []`} {
		if !strings.Contains(string(data), field) {
			t.Fatalf("expected %s in %s", field, data)
		}
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(Snapshot{}, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestWriteDispatch(t *testing.T) {
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, FileName(f, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)))
		if err := Write(f, sampleData(), path); err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		if !strings.HasSuffix(path, "focusboard-export-2026-10-21."+f) {
			t.Fatalf("file name %q", path)
		}
	}
	if err := Write("xml", Snapshot{}, filepath.Join(dir, "x.xml")); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("out/Board.JSON"); err != nil || f != "json" {
		t.Fatalf("got %q %v", f, err)
	}
	if _, err := FormatFromPath("board.txt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{95, "01:35"},
		{1440, "24:00"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.mins); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}
