package inmemory

import (
	"context"
	"strings"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

// caller must hold the lock
func (s *Storage) emailTaken(email string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Storage) CreateUser(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.emailTaken(userToCreate.Email, 0) {
		return repo.ErrDuplicateEmail
	}
	s.lastUserID++
	now := time.Now()
	userToCreate.ID = s.lastUserID
	userToCreate.CreatedAt = now
	userToCreate.UpdatedAt = now
	s.users[userToCreate.ID] = copyUser(userToCreate)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if strings.EqualFold(s.users[id].Email, email) {
			return copyUser(s.users[id]), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) GetUsersByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.users[id]; ok {
			wanted[id] = struct{}{}
		}
	}
	res := []*user.User{}
	for _, id := range sortedKeys(wanted) {
		res = append(res, copyUser(s.users[id]))
	}
	return res, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*user.User{}
	for _, id := range sortedKeys(s.users) {
		res = append(res, copyUser(s.users[id]))
	}
	return res, nil
}

func (s *Storage) UpdateUser(ctx context.Context, userToUpdate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.users[userToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if s.emailTaken(userToUpdate.Email, userToUpdate.ID) {
		return repo.ErrDuplicateEmail
	}
	userToUpdate.CreatedAt = existing.CreatedAt
	userToUpdate.UpdatedAt = time.Now()
	s.users[userToUpdate.ID] = copyUser(userToUpdate)
	return nil
}

// DeleteUser removes the user from every task it was assigned to, tasks stay.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.users, id)
	for _, set := range s.assignees {
		delete(set, id)
	}
	return nil
}

func (s *Storage) GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range sortedKeys(s.tasks) {
		if _, ok := s.assignees[id][userID]; ok {
			res = append(res, s.withAssignees(s.tasks[id]))
		}
	}
	return res, nil
}

func (s *Storage) AssignTasks(ctx context.Context, userID int64, taskIDs []int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[userID]; !ok {
		return repo.ErrNotFound
	}
	for _, taskID := range taskIDs {
		if _, ok := s.tasks[taskID]; !ok {
			continue
		}
		s.addAssignment(taskID, userID)
	}
	return nil
}
