package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskManager/internal/handlers"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockService) CreateTask(ctx context.Context, title, description string, taskType task.Type) (*task.Task, error) {
	args := m.Called(ctx, title, description, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockService) FilterTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockService) UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) UpdateTaskStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) AssignTask(ctx context.Context, taskID int64, userIDs []int64) (*task.Task, error) {
	args := m.Called(ctx, taskID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockService) GetTaskUsers(ctx context.Context, taskID int64) ([]*user.User, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockService) GetTaskStats(ctx context.Context) (*task.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Stats), args.Error(1)
}

func (m *MockService) CreateUser(ctx context.Context, name, email, mobile, password string) (*user.User, error) {
	args := m.Called(ctx, name, email, mobile, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockService) ListUsers(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockService) UpdateUser(ctx context.Context, id int64, options ...user.UserOption) (*user.User, error) {
	args := m.Called(ctx, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockService) AssignUser(ctx context.Context, userID int64, taskIDs []int64) (*user.User, error) {
	args := m.Called(ctx, userID, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var _ handlers.Service = (*MockService)(nil)

func sampleTask(id int64) *task.Task {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:            id,
		Title:         "Fix login",
		Description:   "Users cannot sign in",
		Status:        task.StatusPending,
		Type:          task.TypeBug,
		CreatedAt:     created,
		UpdatedAt:     created,
		AssignedUsers: []*user.User{},
	}
}

func sampleUser(id int64) *user.User {
	return &user.User{ID: id, Name: "Ann", Email: "ann@example.com", Mobile: "5550100"}
}

func do(t *testing.T, m *MockService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := handlers.NewRouter(handlers.NewHandler(m))

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success - service is healthy",
			setupMock: func(m *MockService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name: "error - store unreachable",
			setupMock: func(m *MockService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			rr := do(t, mockService, http.MethodGet, "/health", "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			body := decode(t, rr)
			assert.Equal(t, tt.expectedBody, body["status"])
			assert.Equal(t, "task-manager", body["service"])
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_PostTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		contentType    string
		setupMock      func(*MockService)
		expectedStatus int
		checkBody      func(*testing.T, map[string]any)
	}{
		{
			name:        "success - created with default type",
			body:        `{"title":"Fix login","description":"Users cannot sign in"}`,
			contentType: "application/json",
			setupMock: func(m *MockService) {
				m.On("CreateTask", mock.Anything, "Fix login", "Users cannot sign in", task.Type("")).
					Return(sampleTask(1), nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(1), body["id"])
				assert.Equal(t, "pending", body["status"])
				assert.Nil(t, body["completed_at"])
				assert.Equal(t, []any{}, body["assigned_users"])
			},
		},
		{
			name:           "error - missing fields",
			body:           `{"task_type":"epic"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]any) {
				errs, ok := body["errors"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "This field is required.", errs["title"])
				assert.Equal(t, "This field is required.", errs["description"])
				assert.Contains(t, errs["task_type"], "epic")
			},
		},
		{
			name:           "error - blank title",
			body:           `{"title":"  ","description":"x"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]any) {
				errs := body["errors"].(map[string]any)
				assert.Equal(t, "This field may not be blank.", errs["title"])
			},
		},
		{
			name:           "error - title too long",
			body:           `{"title":"` + strings.Repeat("a", 256) + `","description":"x"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]any) {
				errs := body["errors"].(map[string]any)
				assert.Equal(t, "Ensure this field has no more than 255 characters.", errs["title"])
			},
		},
		{
			name:           "error - wrong content type",
			body:           `{"title":"a","description":"b"}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - malformed JSON",
			body:           `{"title":`,
			contentType:    "application/json",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Malformed request body", body["message"])
			},
		},
		{
			name:        "error - service failure",
			body:        `{"title":"a","description":"b"}`,
			contentType: "application/json",
			setupMock: func(m *MockService) {
				m.On("CreateTask", mock.Anything, "a", "b", task.Type("")).Return(nil, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Internal server error", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			router := handlers.NewRouter(handlers.NewHandler(mockService))
			req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			if tt.checkBody != nil {
				tt.checkBody(t, decode(t, rr))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetTask(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name:   "success",
			target: "/tasks/1",
			setupMock: func(m *MockService) {
				m.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "error - unknown id",
			target: "/tasks/9999",
			setupMock: func(m *MockService) {
				m.On("GetTask", mock.Anything, int64(9999)).Return(nil, service.NewNotFound(service.ResourceTask, 9999))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "error - non-numeric id never matches",
			target:         "/tasks/abc",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "error - id overflows int64",
			target:         "/tasks/99999999999999999999",
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			rr := do(t, mockService, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_UpdateTaskStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		completed := sampleTask(1)
		completed.Status = task.StatusCompleted
		at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
		completed.CompletedAt = &at

		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)
		mockService.On("UpdateTaskStatus", mock.Anything, int64(1), task.StatusCompleted).Return(completed, nil)

		rr := do(t, mockService, http.MethodPatch, "/tasks/1", `{"status":"completed"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "2024-05-02T00:00:00Z", body["completed_at"])
	})

	t.Run("error - status missing", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)

		rr := do(t, mockService, http.MethodPatch, "/tasks/1", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Status not provided", decode(t, rr)["message"])
		mockService.AssertNotCalled(t, "UpdateTaskStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - invalid status", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)
		mockService.On("UpdateTaskStatus", mock.Anything, int64(1), task.Status("done")).
			Return(nil, service.NewValidationError("status", "Invalid status"))

		rr := do(t, mockService, http.MethodPatch, "/tasks/1", `{"status":"done"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		errs := decode(t, rr)["errors"].(map[string]any)
		assert.Equal(t, "Invalid status", errs["status"])
	})

	for name, body := range map[string]string{
		"empty body":     `{}`,
		"invalid status": `{"status":"bogus"}`,
	} {
		t.Run("error - unknown task with "+name, func(t *testing.T) {
			mockService := new(MockService)
			mockService.On("GetTask", mock.Anything, int64(9999)).Return(nil, service.NewNotFound(service.ResourceTask, 9999))

			rr := do(t, mockService, http.MethodPatch, "/tasks/9999", body)

			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, "Task not found", decode(t, rr)["message"])
			mockService.AssertNotCalled(t, "UpdateTaskStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_UpdateTask(t *testing.T) {
	t.Run("success - partial update", func(t *testing.T) {
		updated := sampleTask(1)
		updated.Title = "Renamed"

		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)
		mockService.On("UpdateTask", mock.Anything, int64(1), mock.MatchedBy(func(opts []task.TaskOption) bool {
			return len(opts) == 1
		})).Return(updated, nil)

		rr := do(t, mockService, http.MethodPut, "/tasks/1", `{"title":"Renamed"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Renamed", decode(t, rr)["title"])
		mockService.AssertExpectations(t)
	})

	t.Run("error - blank description", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(1)).Return(sampleTask(1), nil)

		rr := do(t, mockService, http.MethodPut, "/tasks/1", `{"description":""}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - unknown task with invalid body", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetTask", mock.Anything, int64(9999)).Return(nil, service.NewNotFound(service.ResourceTask, 9999))

		rr := do(t, mockService, http.MethodPut, "/tasks/9999", `{"title":""}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_DeleteTask(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusNoContent},
		{name: "error - not found", serviceErr: service.NewNotFound(service.ResourceTask, 3), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockService.On("DeleteTask", mock.Anything, int64(3)).Return(tt.serviceErr)

			rr := do(t, mockService, http.MethodDelete, "/tasks/3", "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.serviceErr == nil {
				assert.Empty(t, rr.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_FilterTasks(t *testing.T) {
	mockService := new(MockService)
	mockService.On("FilterTasks", mock.Anything, task.Filter{
		Status: task.StatusPending,
		Type:   task.TypeBug,
		Search: "login",
	}).Return([]*task.Task{sampleTask(1)}, nil)

	rr := do(t, mockService, http.MethodGet, "/tasks/filter?status=pending&task_type=bug&search=login", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body, 1)
	mockService.AssertExpectations(t)
}

func TestHandler_TaskStats(t *testing.T) {
	stats := task.NewStats()
	stats.Total = 3
	stats.ByStatus[task.StatusPending] = 2
	stats.ByStatus[task.StatusCompleted] = 1
	stats.ByType[task.TypeBug] = 3

	mockService := new(MockService)
	mockService.On("GetTaskStats", mock.Anything).Return(stats, nil)

	rr := do(t, mockService, http.MethodGet, "/tasks/stats", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, float64(3), body["total_tasks"])
	assert.Equal(t, map[string]any{"pending": float64(2), "completed": float64(1)}, body["by_status"])
	assert.Equal(t, map[string]any{"bug": float64(3)}, body["by_type"])
}

func TestHandler_AssignTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"task_id":1,"user_ids":[1,2]}`,
			setupMock: func(m *MockService) {
				assigned := sampleTask(1)
				assigned.AssignedUsers = []*user.User{sampleUser(1), sampleUser(2)}
				m.On("AssignTask", mock.Anything, int64(1), []int64{1, 2}).Return(assigned, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - empty user list",
			body:           `{"task_id":1,"user_ids":[]}`,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - missing task id",
			body:           `{"user_ids":[1]}`,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - no users found",
			body: `{"task_id":1,"user_ids":[77]}`,
			setupMock: func(m *MockService) {
				m.On("AssignTask", mock.Anything, int64(1), []int64{77}).
					Return(nil, service.NewNoneFound(service.ResourceUsers, []int64{77}))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			rr := do(t, mockService, http.MethodPost, "/tasks/assign", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_PostUser(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "success",
			body: `{"name":"Ann","email":"ann@example.com","mobile":"5550100"}`,
			setupMock: func(m *MockService) {
				m.On("CreateUser", mock.Anything, "Ann", "ann@example.com", "5550100", "").Return(sampleUser(1), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid email",
			body:           `{"name":"Ann","email":"not-an-email","mobile":"5550100"}`,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "email",
		},
		{
			name:           "error - mobile too long",
			body:           `{"name":"Ann","email":"ann@example.com","mobile":"5550100555010055"}`,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "mobile",
		},
		{
			name: "error - duplicate email",
			body: `{"name":"Ann","email":"ann@example.com","mobile":"5550100"}`,
			setupMock: func(m *MockService) {
				m.On("CreateUser", mock.Anything, "Ann", "ann@example.com", "5550100", "").
					Return(nil, service.NewValidationError("email", "user with this email already exists."))
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			rr := do(t, mockService, http.MethodPost, "/users", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			body := decode(t, rr)
			if tt.expectedField != "" {
				errs := body["errors"].(map[string]any)
				assert.Contains(t, errs, tt.expectedField)
			} else {
				assert.NotContains(t, body, "password")
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_UserEndpoints(t *testing.T) {
	t.Run("update user via PATCH", func(t *testing.T) {
		updated := sampleUser(1)
		updated.Mobile = "777"

		mockService := new(MockService)
		mockService.On("GetUser", mock.Anything, int64(1)).Return(sampleUser(1), nil)
		mockService.On("UpdateUser", mock.Anything, int64(1), mock.Anything).Return(updated, nil)

		rr := do(t, mockService, http.MethodPatch, "/users/1", `{"mobile":"777"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "777", decode(t, rr)["mobile"])
	})

	t.Run("update unknown user with invalid email", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetUser", mock.Anything, int64(9999)).Return(nil, service.NewNotFound(service.ResourceUser, 9999))

		rr := do(t, mockService, http.MethodPut, "/users/9999", `{"email":"nope"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", decode(t, rr)["message"])
		mockService.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete user", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("DeleteUser", mock.Anything, int64(1)).Return(nil)

		rr := do(t, mockService, http.MethodDelete, "/users/1", "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("user tasks of unknown user", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetUserTasks", mock.Anything, int64(9999)).Return(nil, service.NewNotFound(service.ResourceUser, 9999))

		rr := do(t, mockService, http.MethodGet, "/users/9999/tasks", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", decode(t, rr)["message"])
	})

	t.Run("assign user returns the user", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("AssignUser", mock.Anything, int64(1), []int64{1}).Return(sampleUser(1), nil)

		rr := do(t, mockService, http.MethodPost, "/users/assign", `{"user_id":1,"task_ids":[1]}`)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, float64(1), body["id"])
		assert.Equal(t, "ann@example.com", body["email"])
	})

	t.Run("task users", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("GetTaskUsers", mock.Anything, int64(1)).Return([]*user.User{sampleUser(1)}, nil)

		rr := do(t, mockService, http.MethodGet, "/tasks/1/users", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ann@example.com")
	})
}

func TestHandler_UnknownRoutes(t *testing.T) {
	mockService := new(MockService)

	rr := do(t, mockService, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found", decode(t, rr)["message"])

	rr = do(t, mockService, http.MethodDelete, "/tasks", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
