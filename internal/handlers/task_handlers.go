package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.service.ListTasks(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *Handler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	created, err := h.service.CreateTask(r.Context(), *request.Title, *request.Description, task.Type(request.TaskType))
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: task received",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(found))
}

// UpdateTaskStatus handles PATCH /tasks/{id}.
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok || !h.taskExists(w, r, id, "update_task_status") {
		return
	}

	var request dto.UpdateStatusRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Status == nil {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "status"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Status not provided")
		return
	}

	updated, err := h.service.UpdateTaskStatus(r.Context(), id, task.Status(*request.Status))
	if err != nil {
		handleServiceError(w, r, err, "update_task_status")
		return
	}

	logger.Info("HTTP_OUT: task status updated",
		zap.Int64("task_id", id),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

// UpdateTask handles PUT /tasks/{id}, a partial update of the task details.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok || !h.taskExists(w, r, id, "update_task") {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}

// FilterTasks handles GET /tasks/filter?status=&task_type=&search=.
func (h *Handler) FilterTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query := r.URL.Query()
	filter := task.Filter{
		Status: task.Status(query.Get("status")),
		Type:   task.Type(query.Get("task_type")),
		Search: query.Get("search"),
	}

	tasks, err := h.service.FilterTasks(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err, "filter_tasks")
		return
	}

	logger.Info("HTTP_OUT: tasks filtered",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *Handler) TaskStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	stats, err := h.service.GetTaskStats(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "task_stats")
		return
	}

	logger.Info("HTTP_OUT: task stats",
		zap.Int("total_tasks", stats.Total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromStats(stats))
}

func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.AssignTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	assigned, err := h.service.AssignTask(r.Context(), *request.TaskID, request.UserIDs)
	if err != nil {
		handleServiceError(w, r, err, "assign_task")
		return
	}

	logger.Info("HTTP_OUT: task assigned",
		zap.Int64("task_id", assigned.ID),
		zap.Int("assignees", len(assigned.AssignedUsers)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(assigned))
}

func (h *Handler) TaskUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := h.service.GetTaskUsers(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "task_users")
		return
	}

	logger.Info("HTTP_OUT: task users listed",
		zap.Int64("task_id", id),
		zap.Int("count", len(users)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromUserList(users))
}
