package task

import (
	"time"

	"taskManager/internal/models/user"
)

type Task struct {
	ID            int64        `json:"id" db:"id"`
	Title         string       `json:"title" db:"title"`
	Description   string       `json:"description" db:"description"`
	Status        Status       `json:"status" db:"status"`
	Type          Type         `json:"task_type" db:"task_type"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time   `json:"completed_at" db:"completed_at"`
	AssignedUsers []*user.User `json:"assigned_users" db:"-"`
}

type Status string
type Type string

const StatusPending Status = "pending"
const StatusInProgress Status = "in_progress"
const StatusCompleted Status = "completed"

const TypeBug Type = "bug"
const TypeFeature Type = "feature"
const TypeImprovement Type = "improvement"
const TypeTask Type = "task"

const MaxTitleLength = 255

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}
var Types = []Type{TypeBug, TypeFeature, TypeImprovement, TypeTask}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

func New(title, description string, taskType Type) *Task {
	if taskType == "" {
		taskType = TypeTask
	}
	return &Task{
		Title:         title,
		Description:   description,
		Status:        StatusPending,
		Type:          taskType,
		AssignedUsers: []*user.User{},
	}
}

// Filter combines its fields conjunctively; Search matches title or description.
// Zero values impose no constraint.
type Filter struct {
	Status Status
	Type   Type
	Search string
}

func (f Filter) IsEmpty() bool {
	return f.Status == "" && f.Type == "" && f.Search == ""
}

type Stats struct {
	Total    int            `json:"total_tasks"`
	ByStatus map[Status]int `json:"by_status"`
	ByType   map[Type]int   `json:"by_type"`
}

func NewStats() *Stats {
	return &Stats{
		ByStatus: make(map[Status]int),
		ByType:   make(map[Type]int),
	}
}
