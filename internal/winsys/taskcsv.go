package winsys

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// parseTaskCSV extracts task name, action and state from schtasks' verbose
// CSV output. schtasks repeats the header line per task folder; header rows
// re-anchor the column indexes for the rows that follow.
func parseTaskCSV(raw string) ([]TaskEntry, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing schtasks output: %w", err)
	}

	var (
		out       []TaskEntry
		nameIdx   = -1
		actionIdx = -1
		stateIdx  = -1
	)
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		if rec[0] == "HostName" || strings.Contains(rec[1], "TaskName") {
			nameIdx, actionIdx, stateIdx = -1, -1, -1
			for i, col := range rec {
				switch strings.TrimSpace(col) {
				case "TaskName":
					nameIdx = i
				case "Task To Run":
					actionIdx = i
				case "Scheduled Task State":
					stateIdx = i
				}
			}
			continue
		}
		if nameIdx < 0 || nameIdx >= len(rec) {
			continue
		}
		entry := TaskEntry{Name: strings.TrimSpace(rec[nameIdx]), State: "Unknown"}
		if entry.Name == "" || !strings.HasPrefix(entry.Name, `\`) {
			continue
		}
		if actionIdx >= 0 && actionIdx < len(rec) {
			entry.Action = strings.TrimSpace(rec[actionIdx])
		}
		if stateIdx >= 0 && stateIdx < len(rec) {
			entry.State = strings.TrimSpace(rec[stateIdx])
		}
		out = append(out, entry)
	}
	return out, nil
}
