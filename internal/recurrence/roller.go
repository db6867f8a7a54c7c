package recurrence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	cron "github.com/netresearch/go-cron"

	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

// Roller periodically re-opens completed recurring tasks: each sweep resets
// them to pending with the due date advanced by one recurrence step.
type Roller struct {
	db       *store.DB
	interval time.Duration
	cron     *cron.Cron
}

// NewRoller creates a roller sweeping at the given interval.
func NewRoller(db *store.DB, interval time.Duration) *Roller {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Roller{db: db, interval: interval}
}

// Start schedules the sweep job and runs one sweep immediately so restarts
// don't delay overdue rollovers by a full interval.
func (r *Roller) Start(ctx context.Context) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		if _, err := r.Sweep(ctx); err != nil {
			slog.Error("recurrence sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule recurrence sweep: %w", err)
	}
	r.cron.Start()

	if _, err := r.Sweep(ctx); err != nil {
		slog.Error("recurrence sweep failed", "error", err)
	}
	slog.Info("recurrence roller started", "interval", r.interval)
	return nil
}

// Stop halts the sweep schedule. A sweep already running finishes.
func (r *Roller) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	slog.Info("recurrence roller stopped")
}

// Sweep re-opens every completed recurring task in one transaction and
// returns how many were rolled over.
func (r *Roller) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	rolled := 0
	err := r.db.RunInTx(ctx, func(tx *sql.Tx) error {
		taskStore := tasks.NewSQLStore(tx)
		due, err := taskStore.CompletedRecurring(ctx)
		if err != nil {
			return err
		}
		for _, t := range due {
			next := nextDue(t, now)
			pending := tasks.StatusPending
			patch := tasks.Patch{Status: &pending, DueDate: &next}
			if _, err := taskStore.Update(ctx, t.ID, t.UserID, patch); err != nil {
				return fmt.Errorf("roll task %s: %w", t.ID, err)
			}
			rolled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if rolled > 0 {
		slog.Info("recurring tasks rolled over", "count", rolled)
	}
	return rolled, nil
}

// nextDue advances the task's due date past now, stepping from the old due
// date when one exists, otherwise from now.
func nextDue(t *tasks.Task, now time.Time) time.Time {
	pattern := *t.RecurrencePattern
	base := now
	if t.DueDate != nil {
		base = *t.DueDate
	}
	next := NextOccurrence(pattern, base)
	for !next.After(now) {
		next = NextOccurrence(pattern, next)
	}
	return next
}
