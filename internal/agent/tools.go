// Package agent implements the dialogue coordinator that turns natural
// language into task operations via a tool-calling chat model.
package agent

import (
	"github.com/cloudwego/eino/schema"
)

// ToolKind is the closed set of operations the model may request. Using an
// enum instead of dispatching on the wire name keeps the executor switch
// exhaustive at compile time.
type ToolKind int

const (
	ToolAdd ToolKind = iota
	ToolList
	ToolComplete
	ToolUpdate
	ToolDelete
)

// Wire names advertised to the completion engine.
const (
	nameAdd      = "add_task"
	nameList     = "list_tasks"
	nameComplete = "complete_task"
	nameUpdate   = "update_task"
	nameDelete   = "delete_task"
)

// KindForName maps a wire tool name to its kind.
func KindForName(name string) (ToolKind, bool) {
	switch name {
	case nameAdd:
		return ToolAdd, true
	case nameList:
		return ToolList, true
	case nameComplete:
		return ToolComplete, true
	case nameUpdate:
		return ToolUpdate, true
	case nameDelete:
		return ToolDelete, true
	default:
		return 0, false
	}
}

// Name returns the wire name of the kind.
func (k ToolKind) Name() string {
	switch k {
	case ToolAdd:
		return nameAdd
	case ToolList:
		return nameList
	case ToolComplete:
		return nameComplete
	case ToolUpdate:
		return nameUpdate
	case ToolDelete:
		return nameDelete
	default:
		return "unknown"
	}
}

// catalog is the static tool catalog, built once at package init and
// advertised unchanged on every first-phase completion call.
var catalog = buildCatalog()

// Catalog returns the tool definitions for the completion engine.
func Catalog() []*schema.ToolInfo { return catalog }

func buildCatalog() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: nameAdd,
			Desc: "Create a new task for the user. Use this when the user wants to add, create, or make a new task/todo item.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {
					Type:     schema.String,
					Desc:     "The title of the task",
					Required: true,
				},
				"description": {
					Type: schema.String,
					Desc: "Optional description of the task",
				},
				"priority": {
					Type: schema.String,
					Desc: "Priority level",
					Enum: []string{"low", "medium", "high"},
				},
				"due_date": {
					Type: schema.String,
					Desc: "Due date in ISO format (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)",
				},
				"tags": {
					Type:     schema.Array,
					Desc:     "Optional list of tags for the task",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
				},
				"is_recurring": {
					Type: schema.Boolean,
					Desc: "Whether the task is recurring",
				},
				"recurrence_pattern": {
					Type: schema.String,
					Desc: "Recurrence pattern for recurring tasks",
					Enum: []string{"daily", "weekly", "monthly"},
				},
			}),
		},
		{
			Name: nameList,
			Desc: "List the user's tasks, optionally filtered by status, priority, or a title search. Use this when the user wants to see, show, or find tasks.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"status": {
					Type: schema.String,
					Desc: "Filter by status",
					Enum: []string{"pending", "in_progress", "completed"},
				},
				"priority": {
					Type: schema.String,
					Desc: "Filter by priority",
					Enum: []string{"low", "medium", "high"},
				},
				"search": {
					Type: schema.String,
					Desc: "Search term to match against task titles",
				},
				"limit": {
					Type: schema.Integer,
					Desc: "Maximum number of tasks to return (default 10)",
				},
			}),
		},
		{
			Name: nameComplete,
			Desc: "Mark a task as completed. Identify the task by its id, or by (part of) its title.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"task_id": {
					Type: schema.String,
					Desc: "The id of the task to complete",
				},
				"title": {
					Type: schema.String,
					Desc: "The title (or part of the title) of the task to complete",
				},
			}),
		},
		{
			Name: nameUpdate,
			Desc: "Update properties of an existing task. Identify the task by id or title search, then supply only the fields to change.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"task_id": {
					Type: schema.String,
					Desc: "The id of the task to update",
				},
				"title_search": {
					Type: schema.String,
					Desc: "Part of the title of the task to update",
				},
				"new_title": {
					Type: schema.String,
					Desc: "New title for the task",
				},
				"new_description": {
					Type: schema.String,
					Desc: "New description for the task",
				},
				"new_priority": {
					Type: schema.String,
					Desc: "New priority",
					Enum: []string{"low", "medium", "high"},
				},
				"new_status": {
					Type: schema.String,
					Desc: "New status",
					Enum: []string{"pending", "in_progress", "completed"},
				},
				"new_due_date": {
					Type: schema.String,
					Desc: "New due date in ISO format",
				},
				"new_tags": {
					Type:     schema.Array,
					Desc:     "New list of tags, replacing the current one",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
				},
			}),
		},
		{
			Name: nameDelete,
			Desc: "Delete a task permanently. Identify the task by id or title. Always confirm with the user before calling this.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"task_id": {
					Type: schema.String,
					Desc: "The id of the task to delete",
				},
				"title": {
					Type: schema.String,
					Desc: "The title (or part of the title) of the task to delete",
				},
				"confirm": {
					Type: schema.Boolean,
					Desc: "Whether the user has confirmed the deletion",
				},
			}),
		},
	}
}
