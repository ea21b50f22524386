package calendar

import (
	"fmt"
	"strings"

	"remindo/internal/task"
)

// ToTask converts an external event into a local, non-recurring task with
// synthesized details.
func ToTask(e Event) task.Task {
	details := strings.TrimSpace(e.Description)
	if details == "" {
		details = "imported from calendar"
	}
	if e.UID != "" {
		details = fmt.Sprintf("%s [uid %s]", details, e.UID)
	}
	return task.Task{
		Title:     e.Title,
		Details:   details,
		StartTime: e.StartTime.UTC(),
		EndTime:   e.EndTime.UTC(),
	}
}

// DedupKey is the merge key for repeated pulls: events without a UID cannot
// be deduplicated and import every time.
func DedupKey(e Event) string {
	if e.UID == "" {
		return ""
	}
	return "calendar:" + e.UID
}
