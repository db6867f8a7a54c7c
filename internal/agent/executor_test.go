package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

func newTestExecutor(t *testing.T) (*Executor, tasks.Store, uuid.UUID) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	owner := uuid.New()
	_, err = db.Conn().Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		owner.String(), owner.String()+"@example.com", "Test", "x", time.Now(),
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	s := tasks.NewSQLStore(db.Conn())
	return NewExecutor(s, owner), s, owner
}

func TestExecutorAddThenList(t *testing.T) {
	ctx := context.Background()
	exec, _, _ := newTestExecutor(t)

	result, action, err := exec.Execute(ctx, ToolAdd,
		`{"title": "Write report", "priority": "HIGH", "due_date": "2026-03-01", "tags": ["work"]}`)
	if err != nil {
		t.Fatalf("Execute add: %v", err)
	}
	if !result.Success {
		t.Fatalf("add failed: %s", result.Message)
	}
	if action == nil || action.Action != ActionCreated {
		t.Fatalf("add action = %+v, want created", action)
	}
	if action.Task.Priority != string(tasks.PriorityHigh) {
		t.Errorf("priority = %q, want high", action.Task.Priority)
	}
	due := action.Task.DueDate
	if due == nil || due.Year() != 2026 || due.Month() != time.March || due.Hour() != 0 {
		t.Errorf("due date = %v, want 2026-03-01 midnight", due)
	}

	result, action, err = exec.Execute(ctx, ToolList, `{}`)
	if err != nil {
		t.Fatalf("Execute list: %v", err)
	}
	if !result.Success || result.Total == nil || *result.Total != 1 {
		t.Fatalf("list result = %+v, want total 1", result)
	}
	if action == nil || action.Action != ActionListed || len(action.Tasks) != 1 {
		t.Fatalf("list action = %+v", action)
	}
	if action.Tasks[0].Title != "Write report" {
		t.Errorf("listed title = %q", action.Tasks[0].Title)
	}
}

func TestExecutorAddBadDueDate(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	result, action, err := exec.Execute(context.Background(), ToolAdd,
		`{"title": "Call dentist", "due_date": "soonish"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success || action != nil {
		t.Fatalf("expected failure result, got %+v action %+v", result, action)
	}
}

func TestExecutorCompleteByTitle(t *testing.T) {
	ctx := context.Background()
	exec, s, owner := newTestExecutor(t)

	task := &tasks.Task{UserID: owner, Title: "Quarterly Report"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, action, err := exec.Execute(ctx, ToolComplete, `{"title": "quarterly"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("complete failed: %s", result.Message)
	}
	if action == nil || action.Action != ActionCompleted {
		t.Fatalf("action = %+v", action)
	}
	if action.Task.Status != string(tasks.StatusCompleted) {
		t.Errorf("status = %q, want completed", action.Task.Status)
	}
}

func TestExecutorUpdateStatusOnly(t *testing.T) {
	ctx := context.Background()
	exec, s, owner := newTestExecutor(t)

	task := &tasks.Task{UserID: owner, Title: "Plan trip", Description: "Lisbon"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, action, err := exec.Execute(ctx, ToolUpdate,
		`{"task_id": "`+task.ID.String()+`", "new_status": "in_progress"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("update failed: %s", result.Message)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("changes = %v, want only status", result.Changes)
	}
	if action.Task.Status != string(tasks.StatusInProgress) {
		t.Errorf("status = %q", action.Task.Status)
	}

	got, err := s.Get(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "Lisbon" || got.Title != "Plan trip" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}

func TestExecutorUpdateEmptyPatch(t *testing.T) {
	ctx := context.Background()
	exec, s, owner := newTestExecutor(t)

	task := &tasks.Task{UserID: owner, Title: "Plan trip"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, action, err := exec.Execute(ctx, ToolUpdate, `{"task_id": "`+task.ID.String()+`"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success || action != nil {
		t.Fatalf("expected failure for empty patch, got %+v", result)
	}
}

func TestExecutorDeleteMissing(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	result, action, err := exec.Execute(context.Background(), ToolDelete, `{"title": "no such task"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success || action != nil {
		t.Fatalf("expected failure result, got %+v", result)
	}
}

func TestExecutorDelete(t *testing.T) {
	ctx := context.Background()
	exec, s, owner := newTestExecutor(t)

	task := &tasks.Task{UserID: owner, Title: "Old chore"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, action, err := exec.Execute(ctx, ToolDelete, `{"task_id": "`+task.ID.String()+`", "confirm": true}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success || action == nil || action.Action != ActionDeleted {
		t.Fatalf("delete result = %+v action %+v", result, action)
	}
	if got, _ := s.Get(ctx, task.ID, owner); got != nil {
		t.Error("task still present after delete")
	}
}

// vanishingStore resolves tasks normally but loses them on update, as when
// another session deletes the task mid-turn.
type vanishingStore struct {
	tasks.Store
}

func (s *vanishingStore) Update(context.Context, uuid.UUID, uuid.UUID, tasks.Patch) (*tasks.Task, error) {
	return nil, nil
}

func TestExecutorUpdateVanishedTask(t *testing.T) {
	ctx := context.Background()
	_, s, owner := newTestExecutor(t)

	task := &tasks.Task{UserID: owner, Title: "Water plants"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exec := NewExecutor(&vanishingStore{Store: s}, owner)
	result, action, err := exec.Execute(ctx, ToolUpdate, `{"title_search": "water", "new_status": "in_progress"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success || action != nil {
		t.Fatalf("expected failure result, got %+v", result)
	}
	// Resolved via title search, so the message must name the actual task.
	if !strings.Contains(result.Message, task.ID.String()) {
		t.Errorf("message %q does not name task %s", result.Message, task.ID)
	}
}
