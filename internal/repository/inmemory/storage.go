package inmemory

import (
	"context"
	"sort"
	"sync"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

// Storage keeps users, tasks and assignments in maps guarded by one RWMutex.
// Values are copied on the way in and out so callers never share memory with the store.
type Storage struct {
	tasks      map[int64]*task.Task
	users      map[int64]*user.User
	assignees  map[int64]map[int64]struct{} // task id -> user ids
	lastTaskID int64
	lastUserID int64
	mtx        *sync.RWMutex
}

func New() *Storage {
	return &Storage{
		tasks:     make(map[int64]*task.Task),
		users:     make(map[int64]*user.User),
		assignees: make(map[int64]map[int64]struct{}),
		mtx:       &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is alive")
	return nil
}

func (s *Storage) Close() {}

func copyTask(t *task.Task) *task.Task {
	c := *t
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	c.AssignedUsers = nil
	return &c
}

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

// caller must hold the lock
func (s *Storage) withAssignees(t *task.Task) *task.Task {
	res := copyTask(t)
	res.AssignedUsers = []*user.User{}
	for _, id := range sortedKeys(s.assignees[t.ID]) {
		if u, ok := s.users[id]; ok {
			res.AssignedUsers = append(res.AssignedUsers, copyUser(u))
		}
	}
	return res
}

func sortedKeys[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
