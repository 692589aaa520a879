package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, *task.Task) error
	GetTaskByID(context.Context, int64) (*task.Task, error)
	GetTasksByIDs(context.Context, []int64) ([]*task.Task, error)
	ListTasks(context.Context, task.Filter) ([]*task.Task, error)
	UpdateTask(context.Context, *task.Task) error
	DeleteTask(context.Context, int64) error
	GetTaskStats(context.Context) (*task.Stats, error)
	AssignUsers(ctx context.Context, taskID int64, userIDs []int64) error
}

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUserByID(context.Context, int64) (*user.User, error)
	GetUserByEmail(context.Context, string) (*user.User, error)
	GetUsersByIDs(context.Context, []int64) ([]*user.User, error)
	ListUsers(context.Context) ([]*user.User, error)
	UpdateUser(context.Context, *user.User) error
	DeleteUser(context.Context, int64) error
	GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error)
	AssignTasks(ctx context.Context, userID int64, taskIDs []int64) error
}

type Repository interface {
	TaskRepository
	UserRepository
}
