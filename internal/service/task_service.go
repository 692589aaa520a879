package service

import (
	"context"
	"errors"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

func (s *Service) CreateTask(ctx context.Context, title, description string, taskType task.Type) (*task.Task, error) {
	if taskType != "" && !taskType.Valid() {
		return nil, NewValidationError("task_type", fmt.Sprintf("%q is not a valid choice", taskType))
	}

	newTask := task.New(title, description, taskType)
	if err := s.repo.CreateTask(ctx, newTask); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created", zap.Int64("task_id", newTask.ID))
	return newTask, nil
}

func (s *Service) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.Int64("task_id", id))
			return nil, NewNotFound(ResourceTask, id)
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context) ([]*task.Task, error) {
	return s.FilterTasks(ctx, task.Filter{})
}

func (s *Service) FilterTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies partial changes to title, description and type.
func (s *Service) UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	if !t.Type.Valid() {
		return nil, NewValidationError("task_type", fmt.Sprintf("%q is not a valid choice", t.Type))
	}

	if err := s.saveTask(ctx, t); err != nil {
		return nil, err
	}
	logger.Info("Service: task updated", zap.Int64("task_id", id))
	return t, nil
}

// UpdateTaskStatus stamps completed_at on every transition to completed.
// An unknown id wins over an invalid status.
func (s *Service) UpdateTaskStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, NewValidationError("status", "Invalid status")
	}

	previous := t.Status
	t.Status = status
	if status == task.StatusCompleted {
		now := s.now()
		t.CompletedAt = &now
	} else if previous == task.StatusCompleted && s.clearCompletedOnReopen {
		t.CompletedAt = nil
	}

	if err := s.saveTask(ctx, t); err != nil {
		return nil, err
	}
	logger.Info("Service: task status changed",
		zap.Int64("task_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))
	return t, nil
}

func (s *Service) saveTask(ctx context.Context, t *task.Task) error {
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceTask, t.ID)
		}
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.Int64("task_id", id))
			return NewNotFound(ResourceTask, id)
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	logger.Info("Service: task deleted", zap.Int64("task_id", id))
	return nil
}

// AssignTask adds users to the task. Ids that do not resolve are skipped unless
// strict assignment is on; when none resolve nothing is written.
func (s *Service) AssignTask(ctx context.Context, taskID int64, userIDs []int64) (*task.Task, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	wanted := uniqueIDs(userIDs)
	users, err := s.repo.GetUsersByIDs(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("resolving users: %w", err)
	}
	if len(users) == 0 {
		return nil, NewNoneFound(ResourceUsers, wanted)
	}

	found := make(map[int64]struct{}, len(users))
	resolved := make([]int64, 0, len(users))
	for _, u := range users {
		found[u.ID] = struct{}{}
		resolved = append(resolved, u.ID)
	}
	if missing := missingIDs(wanted, found); len(missing) > 0 {
		if s.strictAssignment {
			return nil, NewBusinessError(CodeNotFound, "Some users not found",
				ToDetail("resource", ResourceUsers),
				ToDetail("ids", missing))
		}
		logger.Warn("Service: skipping unknown users on assignment",
			zap.Int64("task_id", taskID),
			zap.Int64s("missing_user_ids", missing))
	}

	if err := s.repo.AssignUsers(ctx, taskID, resolved); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, taskID)
		}
		return nil, fmt.Errorf("assigning users: %w", err)
	}

	logger.Info("Service: users assigned",
		zap.Int64("task_id", taskID),
		zap.Int64s("user_ids", resolved))
	return s.GetTask(ctx, taskID)
}

func (s *Service) GetTaskUsers(ctx context.Context, taskID int64) ([]*user.User, error) {
	t, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.AssignedUsers == nil {
		return []*user.User{}, nil
	}
	return t.AssignedUsers, nil
}

func (s *Service) GetTaskStats(ctx context.Context) (*task.Stats, error) {
	stats, err := s.repo.GetTaskStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	return stats, nil
}
