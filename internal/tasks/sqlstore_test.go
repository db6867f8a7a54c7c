package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
)

func newTestStore(t *testing.T) (*SQLStore, uuid.UUID) {
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
	return NewSQLStore(db.Conn()), owner
}

func TestSQLStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s, owner := newTestStore(t)

	task := &Task{
		UserID:      owner,
		Title:       "Buy milk",
		Description: "Semi-skimmed",
	}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == uuid.Nil {
		t.Fatal("expected generated task ID")
	}
	if task.Status != StatusPending {
		t.Errorf("Status default: got %q, want %q", task.Status, StatusPending)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("Priority default: got %q, want %q", task.Priority, PriorityMedium)
	}

	got, err := s.Get(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}
	if got.Title != "Buy milk" {
		t.Errorf("Title: got %q, want %q", got.Title, "Buy milk")
	}
	if len(got.Tags) != 0 {
		t.Errorf("Tags: got %v, want empty", got.Tags)
	}

	newTitle := "Buy oat milk"
	updated, err := s.Update(ctx, task.ID, owner, Patch{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("Title after update: got %q, want %q", updated.Title, newTitle)
	}
	if updated.Description != "Semi-skimmed" {
		t.Errorf("Description changed by unrelated update: %q", updated.Description)
	}

	deleted, err := s.Delete(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to remove a row")
	}

	got, err = s.Get(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil after delete")
	}
}

func TestSQLStoreOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s, owner := newTestStore(t)
	stranger := uuid.New()

	task := &Task{UserID: owner, Title: "Private task"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, task.ID, stranger)
	if err != nil {
		t.Fatalf("Get as stranger: %v", err)
	}
	if got != nil {
		t.Fatal("stranger must not read another user's task")
	}

	deleted, err := s.Delete(ctx, task.ID, stranger)
	if err != nil {
		t.Fatalf("Delete as stranger: %v", err)
	}
	if deleted {
		t.Fatal("stranger must not delete another user's task")
	}

	title := "hijacked"
	updated, err := s.Update(ctx, task.ID, stranger, Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update as stranger: %v", err)
	}
	if updated != nil {
		t.Fatal("stranger must not update another user's task")
	}
}

func TestSQLStoreListFilters(t *testing.T) {
	ctx := context.Background()
	s, owner := newTestStore(t)

	seed := []struct {
		title  string
		status Status
		prio   Priority
	}{
		{"Quarterly Report", StatusPending, PriorityHigh},
		{"Water plants", StatusPending, PriorityLow},
		{"Renew passport", StatusCompleted, PriorityHigh},
		{"Report expenses", StatusInProgress, PriorityMedium},
	}
	for _, v := range seed {
		if err := s.Create(ctx, &Task{UserID: owner, Title: v.title, Status: v.status, Priority: v.prio}); err != nil {
			t.Fatalf("Create %q: %v", v.title, err)
		}
	}

	got, total, err := s.List(ctx, owner, Filter{Status: StatusPending})
	if err != nil {
		t.Fatalf("List status: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("status filter: got %d/%d, want 2/2", len(got), total)
	}

	got, total, err = s.List(ctx, owner, Filter{Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("List priority: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("priority filter: got %d/%d, want 2/2", len(got), total)
	}

	got, total, err = s.List(ctx, owner, Filter{Search: "report"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 2 {
		t.Errorf("search filter: got total %d, want 2", total)
	}

	// Total reflects all matches regardless of page size.
	got, total, err = s.List(ctx, owner, Filter{PageSize: 1})
	if err != nil {
		t.Fatalf("List paged: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("page size 1: got %d rows", len(got))
	}
	if total != 4 {
		t.Errorf("paged total: got %d, want 4", total)
	}
}

func TestSQLStoreFindByTitle(t *testing.T) {
	ctx := context.Background()
	s, owner := newTestStore(t)

	if err := s.Create(ctx, &Task{UserID: owner, Title: "Quarterly Report"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, search := range []string{"report", "REPORT", "rly Rep"} {
		got, err := s.FindByTitle(ctx, owner, search)
		if err != nil {
			t.Fatalf("FindByTitle(%q): %v", search, err)
		}
		if got == nil {
			t.Fatalf("FindByTitle(%q): no match", search)
		}
		if got.Title != "Quarterly Report" {
			t.Errorf("FindByTitle(%q): got %q", search, got.Title)
		}
	}

	got, err := s.FindByTitle(ctx, owner, "nonexistent")
	if err != nil {
		t.Fatalf("FindByTitle miss: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for miss, got %q", got.Title)
	}
}

func TestSQLStoreCompleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s, owner := newTestStore(t)

	task := &Task{UserID: owner, Title: "Finish slides"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := s.Complete(ctx, task.ID, owner)
		if err != nil {
			t.Fatalf("Complete #%d: %v", i+1, err)
		}
		if got.Status != StatusCompleted {
			t.Errorf("Complete #%d: status %q", i+1, got.Status)
		}
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"ok", Task{Title: "x"}, false},
		{"empty title", Task{Title: "  "}, true},
		{"recurring without pattern", Task{Title: "x", IsRecurring: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
