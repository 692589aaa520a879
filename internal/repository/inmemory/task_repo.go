package inmemory

import (
	"context"
	"strings"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastTaskID++
	now := time.Now()
	taskToCreate.ID = s.lastTaskID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now
	taskToCreate.AssignedUsers = []*user.User{}
	s.tasks[taskToCreate.ID] = copyTask(taskToCreate)
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.withAssignees(taskToGet), nil
}

func (s *Storage) GetTasksByIDs(ctx context.Context, ids []int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.tasks[id]; ok {
			wanted[id] = struct{}{}
		}
	}
	res := []*task.Task{}
	for _, id := range sortedKeys(wanted) {
		res = append(res, s.withAssignees(s.tasks[id]))
	}
	return res, nil
}

func (s *Storage) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	search := strings.ToLower(filter.Search)
	res := []*task.Task{}
	for _, id := range sortedKeys(s.tasks) {
		t := s.tasks[id]
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		res = append(res, s.withAssignees(t))
	}
	return res, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	taskToUpdate.CreatedAt = existing.CreatedAt
	taskToUpdate.UpdatedAt = time.Now()
	s.tasks[taskToUpdate.ID] = copyTask(taskToUpdate)
	return nil
}

// DeleteTask removes the task and its assignments, users stay untouched.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tasks, id)
	delete(s.assignees, id)
	return nil
}

func (s *Storage) GetTaskStats(ctx context.Context) (*task.Stats, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stats := task.NewStats()
	for _, t := range s.tasks {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByType[t.Type]++
	}
	return stats, nil
}

// AssignUsers adds memberships for ids that exist; present memberships are kept as is.
func (s *Storage) AssignUsers(ctx context.Context, taskID int64, userIDs []int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return repo.ErrNotFound
	}
	for _, userID := range userIDs {
		if _, ok := s.users[userID]; !ok {
			continue
		}
		s.addAssignment(taskID, userID)
	}
	return nil
}

// caller must hold the write lock
func (s *Storage) addAssignment(taskID, userID int64) {
	set, ok := s.assignees[taskID]
	if !ok {
		set = make(map[int64]struct{})
		s.assignees[taskID] = set
	}
	set[userID] = struct{}{}
}
