package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"task-petri-flow/internal/engine"
	"task-petri-flow/internal/models"
	"task-petri-flow/internal/registry"
)

// queryTimeout bounds the evaluation of a task filter
const queryTimeout = 2 * time.Second

// TaskHandlers contains handlers for task management endpoints
type TaskHandlers struct {
	engine *engine.Engine
	tasks  *registry.Manager
	logger *slog.Logger
}

// NewTaskHandlers creates new task handlers. A nil logger selects slog.Default().
func NewTaskHandlers(e *engine.Engine, tasks *registry.Manager, logger *slog.Logger) *TaskHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandlers{
		engine: e,
		tasks:  tasks,
		logger: logger,
	}
}

// Request/Response structures for task management

type CreateTaskRequest struct {
	Name string `json:"name"`
}

type TaskResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Age       float64   `json:"age"` // Age in seconds
	Tokens    []int     `json:"tokens"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// CreateTask adds a task at the start place
func (h *TaskHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse JSON: "+err.Error())
		return
	}

	task, err := h.engine.AddTask(req.Name)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyTaskName) {
			h.writeError(w, http.StatusBadRequest, "invalid_name", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    h.taskToResponse(task, h.tokenIndex()),
		Message: "Task created successfully",
	})
}

// GetTask retrieves a task by ID
func (h *TaskHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	taskID := r.URL.Query().Get("id")
	if taskID == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameter", "Task ID is required")
		return
	}

	task, err := h.engine.Task(taskID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "task_not_found", err.Error())
		return
	}

	h.writeSuccess(w, h.taskToResponse(task, h.tokenIndex()), "")
}

// DeleteTask removes a task and its tokens
func (h *TaskHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only DELETE method is allowed")
		return
	}

	taskID := r.URL.Query().Get("id")
	if taskID == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameter", "Task ID is required")
		return
	}

	if err := h.engine.DeleteTask(taskID); err != nil {
		if errors.Is(err, registry.ErrTaskNotFound) {
			h.writeError(w, http.StatusNotFound, "task_not_found", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "deletion_failed", err.Error())
		return
	}

	h.writeSuccess(w, nil, "Task deleted successfully")
}

// ListTasks lists every task in creation order
func (h *TaskHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	h.writeSuccess(w, h.listResponse(h.engine.Tasks()), "")
}

// QueryTasks filters tasks with a Lua expression given as ?filter=
func (h *TaskHandlers) QueryTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	tasks, err := h.tasks.Query(ctx, r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	h.writeSuccess(w, h.listResponse(tasks), "")
}

// GetTaskStatistics returns the number of tasks per status
func (h *TaskHandlers) GetTaskStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	h.writeSuccess(w, h.tasks.GetStatistics(), "")
}

// Helper functions

// tokenIndex maps task ids to the ids of the tokens they own
func (h *TaskHandlers) tokenIndex() map[string][]int {
	index := make(map[string][]int)
	for _, t := range h.engine.Tokens() {
		if t.TaskID != "" {
			index[t.TaskID] = append(index[t.TaskID], t.ID)
		}
	}
	return index
}

func (h *TaskHandlers) listResponse(tasks []*models.Task) TaskListResponse {
	index := h.tokenIndex()
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, h.taskToResponse(task, index))
	}
	return TaskListResponse{Tasks: responses, Total: len(responses)}
}

func (h *TaskHandlers) taskToResponse(task *models.Task, index map[string][]int) TaskResponse {
	tokens := index[task.ID]
	if tokens == nil {
		tokens = []int{}
	}
	return TaskResponse{
		ID:        task.ID,
		Name:      task.Name,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
		Age:       task.Age().Seconds(),
		Tokens:    tokens,
	}
}

func (h *TaskHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *TaskHandlers) writeError(w http.ResponseWriter, status int, err string, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

func (h *TaskHandlers) writeSuccess(w http.ResponseWriter, data interface{}, message string) {
	h.writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}
