package agent

import (
	"testing"
	"time"

	"taskwise/internal/tasks"
)

func TestParsePriority(t *testing.T) {
	cases := map[string]tasks.Priority{
		"low":    tasks.PriorityLow,
		"HIGH":   tasks.PriorityHigh,
		" high ": tasks.PriorityHigh,
		"medium": tasks.PriorityMedium,
		"urgent": tasks.PriorityMedium,
		"":       tasks.PriorityMedium,
	}
	for in, want := range cases {
		if got := ParsePriority(in); got != want {
			t.Errorf("ParsePriority(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRecurrence(t *testing.T) {
	if p := ParseRecurrence("Weekly"); p == nil || *p != tasks.RecurWeekly {
		t.Errorf("ParseRecurrence(Weekly) = %v", p)
	}
	if p := ParseRecurrence("fortnightly"); p != nil {
		t.Errorf("ParseRecurrence(fortnightly) = %q, want nil", *p)
	}
	if p := ParseRecurrence(""); p != nil {
		t.Errorf("ParseRecurrence(\"\") = %q, want nil", *p)
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2026-03-01")
	if err != nil {
		t.Fatalf("ParseDueDate: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("ParseDueDate(2026-03-01) = %v, want %v", got, want)
	}

	got, err = ParseDueDate("2026-03-01T09:30:00")
	if err != nil || got == nil || got.Hour() != 9 {
		t.Errorf("ParseDueDate(datetime) = %v, %v", got, err)
	}

	if got, err = ParseDueDate(""); err != nil || got != nil {
		t.Errorf("ParseDueDate(\"\") = %v, %v, want nil, nil", got, err)
	}

	if _, err = ParseDueDate("next tuesday"); err == nil {
		t.Error("ParseDueDate(next tuesday) succeeded, want error")
	}
}
