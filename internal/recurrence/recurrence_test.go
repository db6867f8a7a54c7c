package recurrence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

func TestNextOccurrence(t *testing.T) {
	from := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	if got := NextOccurrence(tasks.RecurDaily, from); got.Day() != 1 || got.Month() != time.February {
		t.Errorf("daily = %v", got)
	}
	if got := NextOccurrence(tasks.RecurWeekly, from); got.Day() != 7 || got.Month() != time.February {
		t.Errorf("weekly = %v", got)
	}
	// Jan 31 + 1 month normalizes to Mar 3.
	if got := NextOccurrence(tasks.RecurMonthly, from); got.Month() != time.March || got.Day() != 3 {
		t.Errorf("monthly = %v", got)
	}
	if got := NextOccurrence(tasks.RecurDaily, from); got.Hour() != 9 {
		t.Errorf("time of day lost: %v", got)
	}
}

func TestSweepRollsCompletedRecurring(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	owner := uuid.New()
	if _, err := db.Conn().Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		owner.String(), "roller@example.com", "Test", "x", time.Now(),
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	s := tasks.NewSQLStore(db.Conn())
	weekly := tasks.RecurWeekly
	oldDue := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)

	recurring := &tasks.Task{
		UserID:            owner,
		Title:             "Water plants",
		Status:            tasks.StatusCompleted,
		DueDate:           &oldDue,
		IsRecurring:       true,
		RecurrencePattern: &weekly,
	}
	oneOff := &tasks.Task{
		UserID: owner,
		Title:  "File taxes",
		Status: tasks.StatusCompleted,
	}
	for _, task := range []*tasks.Task{recurring, oneOff} {
		if err := s.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	roller := NewRoller(db, time.Hour)
	rolled, err := roller.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if rolled != 1 {
		t.Fatalf("rolled = %d, want 1", rolled)
	}

	got, err := s.Get(ctx, recurring.ID, owner)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != tasks.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.DueDate == nil || !got.DueDate.After(time.Now()) {
		t.Errorf("due date not advanced past now: %v", got.DueDate)
	}

	untouched, err := s.Get(ctx, oneOff.ID, owner)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if untouched.Status != tasks.StatusCompleted {
		t.Errorf("one-off task was rolled: %q", untouched.Status)
	}

	// A second sweep finds nothing to do.
	if rolled, err = roller.Sweep(ctx); err != nil || rolled != 0 {
		t.Errorf("second sweep = %d, %v, want 0, nil", rolled, err)
	}
}
