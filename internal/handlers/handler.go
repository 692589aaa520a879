package handlers

import (
	"context"
	"net/http"
	"strconv"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "task-manager"

type Service interface {
	HealthCheck(context.Context) error

	CreateTask(ctx context.Context, title, description string, taskType task.Type) (*task.Task, error)
	GetTask(ctx context.Context, id int64) (*task.Task, error)
	ListTasks(context.Context) ([]*task.Task, error)
	FilterTasks(context.Context, task.Filter) ([]*task.Task, error)
	UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	AssignTask(ctx context.Context, taskID int64, userIDs []int64) (*task.Task, error)
	GetTaskUsers(ctx context.Context, taskID int64) ([]*user.User, error)
	GetTaskStats(context.Context) (*task.Stats, error)

	CreateUser(ctx context.Context, name, email, mobile, password string) (*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	ListUsers(context.Context) ([]*user.User, error)
	UpdateUser(ctx context.Context, id int64, options ...user.UserOption) (*user.User, error)
	DeleteUser(ctx context.Context, id int64) error
	GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error)
	AssignUser(ctx context.Context, userID int64, taskIDs []int64) (*user.User, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.service.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName))
}

// NotFound answers unmatched routes in the same shape as every other error.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: route not found")
	responseWithError(w, http.StatusNotFound, "Not found")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: method not allowed")
	responseWithError(w, http.StatusMethodNotAllowed, "Method \""+r.Method+"\" not allowed")
}

// pathID reads the numeric {id} route parameter. The router only matches digits,
// so the only failure left is an overflow, answered as 404.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		logger.Warn("HTTP: bad id",
			zap.String("id", idParam),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

// taskExists answers 404 for an unknown task before the request body is read,
// so updates on a missing id never report body errors.
func (h *Handler) taskExists(w http.ResponseWriter, r *http.Request, id int64, operation string) bool {
	if _, err := h.service.GetTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, operation)
		return false
	}
	return true
}

func (h *Handler) userExists(w http.ResponseWriter, r *http.Request, id int64, operation string) bool {
	if _, err := h.service.GetUser(r.Context(), id); err != nil {
		handleServiceError(w, r, err, operation)
		return false
	}
	return true
}
