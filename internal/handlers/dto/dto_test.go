package dto_test

import (
	"strings"
	"testing"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/models/task"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateTaskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request dto.CreateTaskRequest
		want    map[string]string
	}{
		{
			name:    "valid",
			request: dto.CreateTaskRequest{Title: ptr("a"), Description: ptr("b"), TaskType: "bug"},
		},
		{
			name:    "missing everything",
			request: dto.CreateTaskRequest{},
			want: map[string]string{
				"title":       "This field is required.",
				"description": "This field is required.",
			},
		},
		{
			name:    "blank and unknown type",
			request: dto.CreateTaskRequest{Title: ptr(" "), Description: ptr(""), TaskType: "epic"},
			want: map[string]string{
				"title":       "This field may not be blank.",
				"description": "This field may not be blank.",
				"task_type":   `"epic" is not a valid choice.`,
			},
		},
		{
			name:    "title at the limit",
			request: dto.CreateTaskRequest{Title: ptr(strings.Repeat("é", task.MaxTitleLength)), Description: ptr("b")},
		},
		{
			name:    "title over the limit",
			request: dto.CreateTaskRequest{Title: ptr(strings.Repeat("a", task.MaxTitleLength+1)), Description: ptr("b")},
			want:    map[string]string{"title": "Ensure this field has no more than 255 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.request.Validate())
		})
	}
}

func TestUpdateTaskRequest(t *testing.T) {
	empty := dto.UpdateTaskRequest{}
	assert.Nil(t, empty.Validate())
	assert.Empty(t, empty.Options())

	partial := dto.UpdateTaskRequest{Title: ptr("New"), TaskType: ptr("feature")}
	assert.Nil(t, partial.Validate())
	assert.Len(t, partial.Options(), 2)

	bad := dto.UpdateTaskRequest{Description: ptr(""), TaskType: ptr("")}
	assert.Equal(t, map[string]string{
		"description": "This field may not be blank.",
		"task_type":   `"" is not a valid choice.`,
	}, bad.Validate())
}

func TestAssignRequests_Validate(t *testing.T) {
	assert.Equal(t, map[string]string{
		"task_id":  "This field is required.",
		"user_ids": "This field is required.",
	}, dto.AssignTaskRequest{}.Validate())

	assert.Equal(t, map[string]string{
		"user_ids": "This list may not be empty.",
	}, dto.AssignTaskRequest{TaskID: ptr(int64(1)), UserIDs: []int64{}}.Validate())

	assert.Nil(t, dto.AssignUserRequest{UserID: ptr(int64(1)), TaskIDs: []int64{2}}.Validate())
	assert.Equal(t, map[string]string{
		"task_ids": "This list may not be empty.",
	}, dto.AssignUserRequest{UserID: ptr(int64(1)), TaskIDs: []int64{}}.Validate())
}

func TestCreateUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		email string
		ok    bool
	}{
		{name: "plain", email: "ann@example.com", ok: true},
		{name: "subdomain", email: "ann.lee@mail.example.co.uk", ok: true},
		{name: "no at", email: "ann.example.com"},
		{name: "no dot in domain", email: "ann@localhost"},
		{name: "display name", email: "Ann <ann@example.com>"},
		{name: "blank", email: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := dto.CreateUserRequest{Name: ptr("Ann"), Email: ptr(tt.email), Mobile: ptr("5550100")}
			errs := request.Validate()
			if tt.ok {
				assert.Nil(t, errs)
			} else {
				assert.Contains(t, errs, "email")
			}
		})
	}

	assert.Equal(t, map[string]string{
		"name":   "This field is required.",
		"email":  "This field is required.",
		"mobile": "This field is required.",
	}, dto.CreateUserRequest{}.Validate())
}

func TestUpdateUserRequest(t *testing.T) {
	request := dto.UpdateUserRequest{Mobile: ptr("1234567890123456")}
	assert.Equal(t, map[string]string{
		"mobile": "Ensure this field has no more than 15 characters.",
	}, request.Validate())

	ok := dto.UpdateUserRequest{Name: ptr("Ann"), Email: ptr("ann@example.com")}
	assert.Nil(t, ok.Validate())
	assert.Len(t, ok.Options(), 2)
}

func TestFromStats_SkipsZeroCounts(t *testing.T) {
	stats := task.NewStats()
	stats.Total = 2
	stats.ByStatus[task.StatusPending] = 2
	stats.ByStatus[task.StatusCompleted] = 0
	stats.ByType[task.TypeBug] = 2

	resp := dto.FromStats(stats)

	assert.Equal(t, 2, resp.TotalTasks)
	assert.Equal(t, map[string]int{"pending": 2}, resp.ByStatus)
	assert.Equal(t, map[string]int{"bug": 2}, resp.ByType)
}

func TestFromTask_EmptyAssignees(t *testing.T) {
	resp := dto.FromTask(&task.Task{ID: 1, Status: task.StatusPending, Type: task.TypeTask})
	assert.NotNil(t, resp.AssignedUsers)
	assert.Empty(t, resp.AssignedUsers)
}
