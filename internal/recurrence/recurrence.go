package recurrence

import (
	"time"

	"taskwise/internal/tasks"
)

// NextOccurrence advances from by one recurrence step. Monthly recurrence
// uses calendar months, so Jan 31 rolls to Mar 3 the way time.AddDate
// normalizes; tasks keep their time of day.
func NextOccurrence(pattern tasks.RecurrencePattern, from time.Time) time.Time {
	switch pattern {
	case tasks.RecurDaily:
		return from.AddDate(0, 0, 1)
	case tasks.RecurWeekly:
		return from.AddDate(0, 0, 7)
	case tasks.RecurMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from
	}
}
