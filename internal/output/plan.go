package output

import (
	"fmt"

	"github.com/dkarlsen/scythe/internal/cleanup"
	"github.com/dkarlsen/scythe/pkg/change"
)

// PlanTable summarizes a computed change set, one row per file.
func PlanTable(composite *change.Composite) *Table {
	rows := make([][]string, 0, len(composite.Changes))
	totalEdits := 0
	for _, fc := range composite.Changes {
		lines := 0
		for _, e := range fc.Edits {
			lines += int(e.EndLine-e.StartLine) + 1
		}
		rows = append(rows, []string{
			fc.Path,
			fmt.Sprintf("%d", len(fc.Edits)),
			fmt.Sprintf("%d", lines),
		})
		totalEdits += len(fc.Edits)
	}

	return NewTable(
		"Unused methods",
		[]string{"File", "Removals", "Lines"},
		rows,
		[]string{"Total", fmt.Sprintf("%d", totalEdits), ""},
		composite,
	)
}

// StatusTable lists collected statuses at or above the given severity.
func StatusTable(report cleanup.Report, min cleanup.Severity) *Table {
	var rows [][]string
	var data []cleanup.Status
	for _, s := range report.Statuses {
		if s.Severity < min {
			continue
		}
		rows = append(rows, []string{s.Severity.String(), s.Path, s.Message})
		data = append(data, s)
	}
	if len(rows) == 0 {
		return nil
	}
	return NewTable("Notes", []string{"Severity", "File", "Message"}, rows, nil, data)
}
