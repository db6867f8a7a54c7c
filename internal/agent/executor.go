package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskwise/internal/tasks"
)

// Result is the machine-readable outcome of a tool execution, fed back to
// the completion engine as a tool message.
type Result struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	TaskID  string        `json:"task_id,omitempty"`
	Title   string        `json:"title,omitempty"`
	Changes []string      `json:"changes,omitempty"`
	Tasks   []TaskSummary `json:"tasks,omitempty"`
	Total   *int          `json:"total_count,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Executor runs a single tool invocation against one user's tasks. It is
// constructed per turn, bound to the turn's transaction-scoped task store.
//
// Validation problems (malformed arguments, unresolvable references, bad
// enum or date strings) become failure Results so the engine can recover;
// only storage errors are returned as errors and abort the turn.
type Executor struct {
	store  tasks.Store
	userID uuid.UUID
}

// NewExecutor creates an executor for the given user.
func NewExecutor(store tasks.Store, userID uuid.UUID) *Executor {
	return &Executor{store: store, userID: userID}
}

// Execute dispatches one tool invocation. Exactly one storage mutation is
// performed per call, except list, which only reads.
func (e *Executor) Execute(ctx context.Context, kind ToolKind, argsJSON string) (Result, *TaskAction, error) {
	switch kind {
	case ToolAdd:
		return e.addTask(ctx, argsJSON)
	case ToolList:
		return e.listTasks(ctx, argsJSON)
	case ToolComplete:
		return e.completeTask(ctx, argsJSON)
	case ToolUpdate:
		return e.updateTask(ctx, argsJSON)
	case ToolDelete:
		return e.deleteTask(ctx, argsJSON)
	default:
		return failure("unknown tool kind %d", kind), nil, nil
	}
}

type addTaskArgs struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Priority          string   `json:"priority"`
	DueDate           string   `json:"due_date"`
	Tags              []string `json:"tags"`
	IsRecurring       bool     `json:"is_recurring"`
	RecurrencePattern string   `json:"recurrence_pattern"`
}

func (e *Executor) addTask(ctx context.Context, argsJSON string) (Result, *TaskAction, error) {
	var args addTaskArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return failure("Invalid arguments for %s: %v", nameAdd, err), nil, nil
	}

	due, err := ParseDueDate(args.DueDate)
	if err != nil {
		return failure("Could not understand the due date %q. Please use YYYY-MM-DD.", args.DueDate), nil, nil
	}

	task := &tasks.Task{
		UserID:            e.userID,
		Title:             strings.TrimSpace(args.Title),
		Description:       args.Description,
		Priority:          ParsePriority(args.Priority),
		DueDate:           due,
		Tags:              args.Tags,
		IsRecurring:       args.IsRecurring,
		RecurrencePattern: ParseRecurrence(args.RecurrencePattern),
	}
	if err := task.Validate(); err != nil {
		return failure("Failed to create task: %v", err), nil, nil
	}

	if err := e.store.Create(ctx, task); err != nil {
		return Result{}, nil, fmt.Errorf("create task: %w", err)
	}

	summary := summarize(task)
	result := Result{
		Success: true,
		TaskID:  summary.ID,
		Title:   task.Title,
		Message: fmt.Sprintf("Task %q created successfully!", task.Title),
	}
	return result, &TaskAction{Action: ActionCreated, Task: &summary}, nil
}

type listTasksArgs struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Search   string `json:"search"`
	Limit    int    `json:"limit"`
}

const defaultListLimit = 10

func (e *Executor) listTasks(ctx context.Context, argsJSON string) (Result, *TaskAction, error) {
	var args listTasksArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return failure("Invalid arguments for %s: %v", nameList, err), nil, nil
	}

	filter := tasks.Filter{Search: args.Search, PageSize: args.Limit}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultListLimit
	}
	if args.Status != "" {
		status, err := tasks.ParseStatus(args.Status)
		if err != nil {
			return failure("Failed to list tasks: %v", err), nil, nil
		}
		filter.Status = status
	}
	if args.Priority != "" {
		prio, err := tasks.ParsePriorityStrict(args.Priority)
		if err != nil {
			return failure("Failed to list tasks: %v", err), nil, nil
		}
		filter.Priority = prio
	}

	list, total, err := e.store.List(ctx, e.userID, filter)
	if err != nil {
		return Result{}, nil, fmt.Errorf("list tasks: %w", err)
	}

	summaries := make([]TaskSummary, 0, len(list))
	for _, t := range list {
		summaries = append(summaries, summarize(t))
	}

	result := Result{
		Success: true,
		Tasks:   summaries,
		Total:   &total,
		Message: fmt.Sprintf("Found %d tasks.", total),
	}
	return result, &TaskAction{Action: ActionListed, Tasks: summaries}, nil
}

type completeTaskArgs struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
}

func (e *Executor) completeTask(ctx context.Context, argsJSON string) (Result, *TaskAction, error) {
	var args completeTaskArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return failure("Invalid arguments for %s: %v", nameComplete, err), nil, nil
	}

	task, fail, err := e.resolve(ctx, args.TaskID, args.Title)
	if err != nil || fail != nil {
		return deref(fail), nil, err
	}

	completed, err := e.store.Complete(ctx, task.ID, e.userID)
	if err != nil {
		return Result{}, nil, fmt.Errorf("complete task: %w", err)
	}

	summary := summarize(completed)
	result := Result{
		Success: true,
		TaskID:  summary.ID,
		Title:   completed.Title,
		Message: fmt.Sprintf("Task %q marked as completed!", completed.Title),
	}
	return result, &TaskAction{Action: ActionCompleted, Task: &summary}, nil
}

type updateTaskArgs struct {
	TaskID         string    `json:"task_id"`
	TitleSearch    string    `json:"title_search"`
	NewTitle       string    `json:"new_title"`
	NewDescription string    `json:"new_description"`
	NewPriority    string    `json:"new_priority"`
	NewStatus      string    `json:"new_status"`
	NewDueDate     string    `json:"new_due_date"`
	NewTags        *[]string `json:"new_tags"`
}

func (e *Executor) updateTask(ctx context.Context, argsJSON string) (Result, *TaskAction, error) {
	var args updateTaskArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return failure("Invalid arguments for %s: %v", nameUpdate, err), nil, nil
	}

	task, fail, err := e.resolve(ctx, args.TaskID, args.TitleSearch)
	if err != nil || fail != nil {
		return deref(fail), nil, err
	}

	var (
		patch   tasks.Patch
		changes []string
	)
	if args.NewTitle != "" {
		patch.Title = &args.NewTitle
		changes = append(changes, fmt.Sprintf("title to %q", args.NewTitle))
	}
	if args.NewDescription != "" {
		patch.Description = &args.NewDescription
		changes = append(changes, "description")
	}
	if args.NewPriority != "" {
		prio := ParsePriority(args.NewPriority)
		patch.Priority = &prio
		changes = append(changes, fmt.Sprintf("priority to %q", prio))
	}
	if args.NewStatus != "" {
		status, err := tasks.ParseStatus(args.NewStatus)
		if err != nil {
			return failure("Failed to update task: %v", err), nil, nil
		}
		patch.Status = &status
		changes = append(changes, fmt.Sprintf("status to %q", status))
	}
	if args.NewDueDate != "" {
		due, err := ParseDueDate(args.NewDueDate)
		if err != nil {
			return failure("Could not understand the due date %q. Please use YYYY-MM-DD.", args.NewDueDate), nil, nil
		}
		patch.DueDate = due
		changes = append(changes, "due date")
	}
	if args.NewTags != nil {
		patch.Tags = *args.NewTags
		if patch.Tags == nil {
			patch.Tags = []string{}
		}
		changes = append(changes, "tags")
	}

	if patch.IsEmpty() {
		return failure("No changes specified for update."), nil, nil
	}

	updated, err := e.store.Update(ctx, task.ID, e.userID, patch)
	if err != nil {
		return Result{}, nil, fmt.Errorf("update task: %w", err)
	}
	if updated == nil {
		return failure("Could not find task matching %q.", task.ID), nil, nil
	}

	summary := summarize(updated)
	result := Result{
		Success: true,
		TaskID:  summary.ID,
		Title:   updated.Title,
		Changes: changes,
		Message: fmt.Sprintf("Task %q updated: %s", updated.Title, strings.Join(changes, ", ")),
	}
	return result, &TaskAction{Action: ActionUpdated, Task: &summary, Changes: changes}, nil
}

type deleteTaskArgs struct {
	TaskID  string `json:"task_id"`
	Title   string `json:"title"`
	Confirm *bool  `json:"confirm"`
}

func (e *Executor) deleteTask(ctx context.Context, argsJSON string) (Result, *TaskAction, error) {
	var args deleteTaskArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return failure("Invalid arguments for %s: %v", nameDelete, err), nil, nil
	}
	// The system prompt asks the model to confirm deletions with the user
	// first; the confirm flag itself is advisory and not enforced here.

	task, fail, err := e.resolve(ctx, args.TaskID, args.Title)
	if err != nil || fail != nil {
		return deref(fail), nil, err
	}

	summary := summarize(task)
	deleted, err := e.store.Delete(ctx, task.ID, e.userID)
	if err != nil {
		return Result{}, nil, fmt.Errorf("delete task: %w", err)
	}
	if !deleted {
		return failure("Failed to delete task."), nil, nil
	}

	result := Result{
		Success: true,
		TaskID:  summary.ID,
		Title:   summary.Title,
		Message: fmt.Sprintf("Task %q has been deleted.", summary.Title),
	}
	return result, &TaskAction{Action: ActionDeleted, Task: &summary}, nil
}

// resolve finds the target task by id when given, falling back to a
// case-insensitive title substring search. A miss yields a failure Result
// naming the unresolved reference, never an error.
func (e *Executor) resolve(ctx context.Context, taskID, title string) (*tasks.Task, *Result, error) {
	search := taskID
	if search == "" {
		search = title
	}

	var (
		task *tasks.Task
		err  error
	)
	switch {
	case taskID != "":
		id, parseErr := uuid.Parse(taskID)
		if parseErr != nil {
			fail := failure("Could not find task matching %q.", taskID)
			return nil, &fail, nil
		}
		task, err = e.store.Get(ctx, id, e.userID)
	case title != "":
		task, err = e.store.FindByTitle(ctx, e.userID, title)
	default:
		fail := failure("No task id or title given.")
		return nil, &fail, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve task: %w", err)
	}
	if task == nil {
		fail := failure("Could not find task matching %q.", search)
		return nil, &fail, nil
	}
	return task, nil, nil
}

func deref(r *Result) Result {
	if r == nil {
		return Result{}
	}
	return *r
}
