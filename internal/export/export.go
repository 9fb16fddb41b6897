// Package export writes dashboard snapshots to CSV or JSON files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Formats lists the supported export formats, in picker order.
var Formats = []string{"csv", "json"}

// Write exports s in the named format.
func Write(format string, s Snapshot, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(s.Projects, path)
	case "json":
		return ToJSON(s, path)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// FileName is the dated default file name for a format.
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("focusboard-export-%s.%s", now.Format("2006-01-02"), strings.ToLower(format))
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if f == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("cannot infer export format from %q (want .csv or .json)", path)
}
