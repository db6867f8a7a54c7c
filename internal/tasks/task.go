// Package tasks provides the todo task entity and its owner-scoped store.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid status %q", s)
	}
}

// Priority represents the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriorityStrict validates a priority string.
func ParsePriorityStrict(s string) (Priority, error) {
	switch Priority(strings.ToLower(s)) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid priority %q", s)
	}
}

// RecurrencePattern describes how a recurring task repeats.
type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// ParseRecurrencePattern validates a recurrence pattern string.
func ParseRecurrencePattern(s string) (RecurrencePattern, error) {
	switch RecurrencePattern(strings.ToLower(s)) {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return RecurrencePattern(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid recurrence pattern %q", s)
	}
}

// MaxTitleLength is the longest allowed task title.
const MaxTitleLength = 255

// Task is a single todo item. The owner is set at creation and never changes;
// every store operation is scoped by it.
type Task struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"user_id"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	Status            Status             `json:"status"`
	Priority          Priority           `json:"priority"`
	DueDate           *time.Time         `json:"due_date,omitempty"`
	Tags              []string           `json:"tags"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrence_pattern,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Validate checks the invariants a task must hold before it is persisted.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	}
	if t.IsRecurring && t.RecurrencePattern == nil {
		return fmt.Errorf("recurrence pattern is required for recurring tasks")
	}
	return nil
}

// Filter narrows and pages a task listing. Zero values mean "no constraint".
type Filter struct {
	Status    Status
	Priority  Priority
	Search    string // case-insensitive title substring
	SortBy    string // created_at, due_date, priority, title
	SortOrder string // asc or desc
	Page      int
	PageSize  int
}

// Patch is a partial task update; nil fields are left untouched.
type Patch struct {
	Title             *string
	Description       *string
	Status            *Status
	Priority          *Priority
	DueDate           *time.Time
	Tags              []string
	IsRecurring       *bool
	RecurrencePattern *RecurrencePattern
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.Tags == nil &&
		p.IsRecurring == nil && p.RecurrencePattern == nil
}

// Store is the owner-scoped persistence interface for tasks.
// Getters return (nil, nil) when no row matches the id and owner; ownership
// misses are indistinguishable from absence by design.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id, owner uuid.UUID) (*Task, error)
	List(ctx context.Context, owner uuid.UUID, f Filter) ([]*Task, int, error)
	Update(ctx context.Context, id, owner uuid.UUID, p Patch) (*Task, error)
	Delete(ctx context.Context, id, owner uuid.UUID) (bool, error)
	Complete(ctx context.Context, id, owner uuid.UUID) (*Task, error)
	FindByTitle(ctx context.Context, owner uuid.UUID, search string) (*Task, error)
}
