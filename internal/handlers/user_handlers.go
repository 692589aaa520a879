package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_users")
		return
	}

	logger.Info("HTTP_OUT: users listed",
		zap.Int("count", len(users)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromUserList(users))
}

func (h *Handler) PostUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), *request.Name, *request.Email, *request.Mobile, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "create_user")
		return
	}

	logger.Info("HTTP_OUT: user created",
		zap.Int64("user_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromUser(created))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_user")
		return
	}

	logger.Info("HTTP_OUT: user received",
		zap.Int64("user_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromUser(found))
}

// UpdateUser serves both PUT and PATCH, every field is optional.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok || !h.userExists(w, r, id, "update_user") {
		return
	}

	var request dto.UpdateUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_user")
		return
	}

	logger.Info("HTTP_OUT: user updated",
		zap.Int64("user_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromUser(updated))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_user")
		return
	}

	logger.Info("HTTP_OUT: user deleted",
		zap.Int64("user_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}

func (h *Handler) UserTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.GetUserTasks(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "user_tasks")
		return
	}

	logger.Info("HTTP_OUT: user tasks listed",
		zap.Int64("user_id", id),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *Handler) AssignUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.AssignUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, request.Validate()) {
		return
	}

	assigned, err := h.service.AssignUser(r.Context(), *request.UserID, request.TaskIDs)
	if err != nil {
		handleServiceError(w, r, err, "assign_user")
		return
	}

	logger.Info("HTTP_OUT: user assigned",
		zap.Int64("user_id", assigned.ID),
		zap.Int64s("task_ids", request.TaskIDs),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromUser(assigned))
}
