package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/focusboard/internal/store"
)

var csvHeader = []string{
	"Project", "Status", "Priority", "Start", "End", "Progress (%)",
	"Task", "Completed", "Completed At", "Estimated",
}

// ToCSV writes one row per project task. Projects without tasks still get
// one row with the task columns left empty.
func ToCSV(projects []store.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range projects {
		base := []string{
			p.Name,
			p.Status.Label(),
			p.Priority.Label(),
			p.StartDate,
			p.EndDate,
			strconv.Itoa(p.Progress()),
		}
		if len(p.Tasks) == 0 {
			if err := w.Write(append(base, "", "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, t := range p.Tasks {
			completedAt := ""
			if t.CompletedAt != nil {
				completedAt = formatTime(t.CompletedAt.Time())
			}
			row := append(base[:len(base):len(base)],
				t.Text,
				strconv.FormatBool(t.Completed),
				completedAt,
				t.EstimatedTime,
			)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
