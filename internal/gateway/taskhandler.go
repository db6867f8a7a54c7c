package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskwise/internal/auth"
	"taskwise/internal/tasks"
)

type taskListResponse struct {
	Tasks    []*tasks.Task `json:"tasks"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type createTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	DueDate           *time.Time `json:"due_date"`
	Tags              []string   `json:"tags"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern"`
}

type updateTaskRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Priority          *string    `json:"priority"`
	Status            *string    `json:"status"`
	DueDate           *time.Time `json:"due_date"`
	Tags              []string   `json:"tags"`
	IsRecurring       *bool      `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	filter := tasks.Filter{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	if v := q.Get("status"); v != "" {
		status, err := tasks.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if v := q.Get("priority"); v != "" {
		prio, err := tasks.ParsePriorityStrict(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Priority = prio
	}
	filter.Page = intQuery(q.Get("page"), 1)
	filter.PageSize = intQuery(q.Get("page_size"), 20)

	list, total, err := s.tasks.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if list == nil {
		list = []*tasks.Task{}
	}
	writeJSON(w, http.StatusOK, taskListResponse{
		Tasks:    list,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task := &tasks.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		IsRecurring: req.IsRecurring,
	}
	if req.Priority != "" {
		prio, err := tasks.ParsePriorityStrict(req.Priority)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		task.Priority = prio
	}
	if req.Status != "" {
		status, err := tasks.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		task.Status = status
	}
	if req.RecurrencePattern != "" {
		pattern, err := tasks.ParseRecurrencePattern(req.RecurrencePattern)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		task.RecurrencePattern = &pattern
	}

	if err := task.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.tasks.Create(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := tasks.Patch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		IsRecurring: req.IsRecurring,
	}
	if req.Priority != nil {
		prio, err := tasks.ParsePriorityStrict(*req.Priority)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Priority = &prio
	}
	if req.Status != nil {
		status, err := tasks.ParseStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}
	if req.RecurrencePattern != nil {
		pattern, err := tasks.ParseRecurrencePattern(*req.RecurrencePattern)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.RecurrencePattern = &pattern
	}

	task, err := s.tasks.Update(r.Context(), id, userID, patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	deleted, err := s.tasks.Delete(r.Context(), id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Complete(r.Context(), id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "complete failed")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
