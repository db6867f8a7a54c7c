package agent

import (
	"fmt"
	"strings"
	"time"

	"taskwise/internal/tasks"
)

// ParsePriority maps a free-form priority string to the priority enum.
// Unrecognized or absent input falls back to medium.
func ParsePriority(s string) tasks.Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return tasks.PriorityLow
	case "high":
		return tasks.PriorityHigh
	default:
		return tasks.PriorityMedium
	}
}

// ParseRecurrence maps a free-form recurrence string to a pattern.
// Absent or unrecognized input yields nil.
func ParseRecurrence(s string) *tasks.RecurrencePattern {
	var p tasks.RecurrencePattern
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		p = tasks.RecurDaily
	case "weekly":
		p = tasks.RecurWeekly
	case "monthly":
		p = tasks.RecurMonthly
	default:
		return nil
	}
	return &p
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDueDate parses an ISO-ish due date string. Empty input yields
// (nil, nil). Unparseable input is an error so the caller can report it
// instead of silently dropping the date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized due date %q", s)
}
