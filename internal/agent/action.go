package agent

import (
	"time"

	"taskwise/internal/tasks"
)

// ActionType tags the UI-facing summary of a turn's task effect.
type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionUpdated   ActionType = "updated"
	ActionCompleted ActionType = "completed"
	ActionDeleted   ActionType = "deleted"
	ActionListed    ActionType = "listed"
)

// TaskSummary is the compact task projection used in list results and actions.
type TaskSummary struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Tags     []string   `json:"tags"`
}

func summarize(t *tasks.Task) TaskSummary {
	return TaskSummary{
		ID:       t.ID.String(),
		Title:    t.Title,
		Status:   string(t.Status),
		Priority: string(t.Priority),
		DueDate:  t.DueDate,
		Tags:     t.Tags,
	}
}

// TaskAction is the UI-facing description of what a turn did to the task
// list. When several tools run in one turn, the coordinator reports the most
// recent one (last non-empty action wins).
type TaskAction struct {
	Action  ActionType    `json:"action"`
	Task    *TaskSummary  `json:"task,omitempty"`
	Tasks   []TaskSummary `json:"tasks,omitempty"`
	Changes []string      `json:"changes,omitempty"`
}
