package dto

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

const (
	reasonRequired  = "This field is required."
	reasonBlank     = "This field may not be blank."
	reasonEmptyList = "This list may not be empty."
	reasonEmail     = "Enter a valid email address."
)

func reasonTooLong(max int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", max)
}

func reasonChoice(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

// fieldErrors collects field -> reason pairs, the first reason per field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, reason string) {
	if _, ok := f[field]; !ok {
		f[field] = reason
	}
}

func (f fieldErrors) result() map[string]string {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f fieldErrors) text(field, value string, max int, required bool) {
	switch {
	case required && strings.TrimSpace(value) == "":
		f.add(field, reasonBlank)
	case utf8.RuneCountInString(value) > max:
		f.add(field, reasonTooLong(max))
	}
}

func (f fieldErrors) email(value string) {
	switch {
	case strings.TrimSpace(value) == "":
		f.add("email", reasonBlank)
	case utf8.RuneCountInString(value) > user.MaxEmailLength:
		f.add("email", reasonTooLong(user.MaxEmailLength))
	case !validEmail(value):
		f.add("email", reasonEmail)
	}
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	// display names and angle brackets are not accepted
	return addr.Address == strings.TrimSpace(value) && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}

type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TaskType    string  `json:"task_type"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.Title == nil {
		errs.add("title", reasonRequired)
	} else {
		errs.text("title", *r.Title, task.MaxTitleLength, true)
	}
	if r.Description == nil {
		errs.add("description", reasonRequired)
	} else if strings.TrimSpace(*r.Description) == "" {
		errs.add("description", reasonBlank)
	}
	if r.TaskType != "" && !task.Type(r.TaskType).Valid() {
		errs.add("task_type", reasonChoice(r.TaskType))
	}
	return errs.result()
}

// UpdateTaskRequest is a partial update, absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TaskType    *string `json:"task_type"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.Title != nil {
		errs.text("title", *r.Title, task.MaxTitleLength, true)
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		errs.add("description", reasonBlank)
	}
	if r.TaskType != nil && !task.Type(*r.TaskType).Valid() {
		errs.add("task_type", reasonChoice(*r.TaskType))
	}
	return errs.result()
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	opts := []task.TaskOption{}
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.TaskType != nil {
		opts = append(opts, task.WithType(task.Type(*r.TaskType)))
	}
	return opts
}

type UpdateStatusRequest struct {
	Status *string `json:"status"`
}

type AssignTaskRequest struct {
	TaskID  *int64  `json:"task_id"`
	UserIDs []int64 `json:"user_ids"`
}

func (r AssignTaskRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.TaskID == nil {
		errs.add("task_id", reasonRequired)
	}
	if r.UserIDs == nil {
		errs.add("user_ids", reasonRequired)
	} else if len(r.UserIDs) == 0 {
		errs.add("user_ids", reasonEmptyList)
	}
	return errs.result()
}

type AssignUserRequest struct {
	UserID  *int64  `json:"user_id"`
	TaskIDs []int64 `json:"task_ids"`
}

func (r AssignUserRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.UserID == nil {
		errs.add("user_id", reasonRequired)
	}
	if r.TaskIDs == nil {
		errs.add("task_ids", reasonRequired)
	} else if len(r.TaskIDs) == 0 {
		errs.add("task_ids", reasonEmptyList)
	}
	return errs.result()
}

type CreateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Mobile   *string `json:"mobile"`
	Password string  `json:"password"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.Name == nil {
		errs.add("name", reasonRequired)
	} else {
		errs.text("name", *r.Name, user.MaxNameLength, true)
	}
	if r.Email == nil {
		errs.add("email", reasonRequired)
	} else {
		errs.email(*r.Email)
	}
	if r.Mobile == nil {
		errs.add("mobile", reasonRequired)
	} else {
		errs.text("mobile", *r.Mobile, user.MaxMobileLength, true)
	}
	return errs.result()
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Mobile *string `json:"mobile"`
}

func (r UpdateUserRequest) Validate() map[string]string {
	errs := fieldErrors{}
	if r.Name != nil {
		errs.text("name", *r.Name, user.MaxNameLength, true)
	}
	if r.Email != nil {
		errs.email(*r.Email)
	}
	if r.Mobile != nil {
		errs.text("mobile", *r.Mobile, user.MaxMobileLength, true)
	}
	return errs.result()
}

func (r UpdateUserRequest) Options() []user.UserOption {
	opts := []user.UserOption{}
	if r.Name != nil {
		opts = append(opts, user.WithName(*r.Name))
	}
	if r.Email != nil {
		opts = append(opts, user.WithEmail(*r.Email))
	}
	if r.Mobile != nil {
		opts = append(opts, user.WithMobile(*r.Mobile))
	}
	return opts
}

type UserResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type TaskResponse struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	TaskType      string         `json:"task_type"`
	CompletedAt   *time.Time     `json:"completed_at"`
	Status        string         `json:"status"`
	AssignedUsers []UserResponse `json:"assigned_users"`
}

type StatsResponse struct {
	TotalTasks int            `json:"total_tasks"`
	ByStatus   map[string]int `json:"by_status"`
	ByType     map[string]int `json:"by_type"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Mobile: u.Mobile,
	}
}

func FromUserList(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		TaskType:      string(t.Type),
		CompletedAt:   t.CompletedAt,
		Status:        string(t.Status),
		AssignedUsers: FromUserList(t.AssignedUsers),
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func FromStats(s *task.Stats) StatsResponse {
	resp := StatsResponse{
		TotalTasks: s.Total,
		ByStatus:   make(map[string]int, len(s.ByStatus)),
		ByType:     make(map[string]int, len(s.ByType)),
	}
	for status, n := range s.ByStatus {
		if n > 0 {
			resp.ByStatus[string(status)] = n
		}
	}
	for taskType, n := range s.ByType {
		if n > 0 {
			resp.ByType[string(taskType)] = n
		}
	}
	return resp
}
