// Package repotest holds the behaviour every repository backend must share.
// Backend tests embed Suite and provide Open.
package repotest

import (
	"context"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
	"taskManager/internal/service"

	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite

	// Open returns an empty repository; it runs before every test.
	Open func() service.Repository

	Repo service.Repository
	Ctx  context.Context
}

func (s *Suite) SetupTest() {
	s.Ctx = context.Background()
	s.Repo = s.Open()
}

func (s *Suite) newTask(title, description string, taskType task.Type) *task.Task {
	t := task.New(title, description, taskType)
	s.Require().NoError(s.Repo.CreateTask(s.Ctx, t))
	return t
}

func (s *Suite) newUser(name, email string) *user.User {
	u := user.New(name, email, "5550100")
	u.Password = user.UnusablePasswordPrefix + "x"
	s.Require().NoError(s.Repo.CreateUser(s.Ctx, u))
	return u
}

func taskIDs(tasks []*task.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func userIDs(users []*user.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func (s *Suite) TestHealthCheck() {
	s.NoError(s.Repo.HealthCheck(s.Ctx))
}

func (s *Suite) TestCreateAndGetTask() {
	created := s.newTask("Write docs", "API reference", task.TypeImprovement)

	s.Positive(created.ID)
	s.False(created.CreatedAt.IsZero())

	got, err := s.Repo.GetTaskByID(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Write docs", got.Title)
	s.Equal("API reference", got.Description)
	s.Equal(task.StatusPending, got.Status)
	s.Equal(task.TypeImprovement, got.Type)
	s.Nil(got.CompletedAt)
	s.NotNil(got.AssignedUsers)
	s.Empty(got.AssignedUsers)
}

func (s *Suite) TestGetTaskNotFound() {
	_, err := s.Repo.GetTaskByID(s.Ctx, 9999)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *Suite) TestListTasksFilter() {
	bug := s.newTask("Login broken", "Users see a 500", task.TypeBug)
	feature := s.newTask("Dark mode", "Add a LOGIN page theme", task.TypeFeature)
	other := s.newTask("Cleanup", "Remove 100% of dead code", task.TypeTask)

	feature.Status = task.StatusInProgress
	s.Require().NoError(s.Repo.UpdateTask(s.Ctx, feature))

	all, err := s.Repo.ListTasks(s.Ctx, task.Filter{})
	s.Require().NoError(err)
	s.Equal([]int64{bug.ID, feature.ID, other.ID}, taskIDs(all))

	byStatus, err := s.Repo.ListTasks(s.Ctx, task.Filter{Status: task.StatusPending})
	s.Require().NoError(err)
	s.Equal([]int64{bug.ID, other.ID}, taskIDs(byStatus))

	byType, err := s.Repo.ListTasks(s.Ctx, task.Filter{Type: task.TypeFeature})
	s.Require().NoError(err)
	s.Equal([]int64{feature.ID}, taskIDs(byType))

	bySearch, err := s.Repo.ListTasks(s.Ctx, task.Filter{Search: "login"})
	s.Require().NoError(err)
	s.Equal([]int64{bug.ID, feature.ID}, taskIDs(bySearch))

	combined, err := s.Repo.ListTasks(s.Ctx, task.Filter{Search: "login", Status: task.StatusPending})
	s.Require().NoError(err)
	s.Equal([]int64{bug.ID}, taskIDs(combined))

	literal, err := s.Repo.ListTasks(s.Ctx, task.Filter{Search: "100%"})
	s.Require().NoError(err)
	s.Equal([]int64{other.ID}, taskIDs(literal))

	wildcard, err := s.Repo.ListTasks(s.Ctx, task.Filter{Search: "_"})
	s.Require().NoError(err)
	s.Empty(wildcard)
}

func (s *Suite) TestListTasksSearchNonASCII() {
	accented := s.newTask("Émoji rendering", "Ünicode desc", task.TypeBug)
	s.newTask("Plain", "ascii only", task.TypeTask)

	for _, term := range []string{"Émoji", "émoji", "ÉMOJI", "ÜNICODE", "ünicode"} {
		found, err := s.Repo.ListTasks(s.Ctx, task.Filter{Search: term})
		s.Require().NoError(err, term)
		s.Equal([]int64{accented.ID}, taskIDs(found), term)
	}
}

func (s *Suite) TestUpdateTask() {
	created := s.newTask("Draft", "First pass", task.TypeTask)

	completedAt := time.Now().UTC().Truncate(time.Second)
	created.Title = "Final"
	created.Status = task.StatusCompleted
	created.CompletedAt = &completedAt
	s.Require().NoError(s.Repo.UpdateTask(s.Ctx, created))

	got, err := s.Repo.GetTaskByID(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Final", got.Title)
	s.Equal(task.StatusCompleted, got.Status)
	s.Require().NotNil(got.CompletedAt)
	s.WithinDuration(completedAt, *got.CompletedAt, time.Second)

	missing := task.New("Ghost", "Never stored", task.TypeTask)
	missing.ID = 9999
	s.ErrorIs(s.Repo.UpdateTask(s.Ctx, missing), repo.ErrNotFound)
}

func (s *Suite) TestGetTasksByIDsSkipsUnknown() {
	first := s.newTask("A", "a", task.TypeTask)
	second := s.newTask("B", "b", task.TypeTask)

	got, err := s.Repo.GetTasksByIDs(s.Ctx, []int64{second.ID, 9999, first.ID})
	s.Require().NoError(err)
	s.Equal([]int64{first.ID, second.ID}, taskIDs(got))
}

func (s *Suite) TestAssignUsersIsIdempotent() {
	t := s.newTask("Review", "Code review", task.TypeTask)
	alice := s.newUser("Alice", "alice@example.com")
	bob := s.newUser("Bob", "bob@example.com")

	s.Require().NoError(s.Repo.AssignUsers(s.Ctx, t.ID, []int64{alice.ID, bob.ID}))
	s.Require().NoError(s.Repo.AssignUsers(s.Ctx, t.ID, []int64{bob.ID, alice.ID}))

	got, err := s.Repo.GetTaskByID(s.Ctx, t.ID)
	s.Require().NoError(err)
	s.Equal([]int64{alice.ID, bob.ID}, userIDs(got.AssignedUsers))

	s.ErrorIs(s.Repo.AssignUsers(s.Ctx, 9999, []int64{alice.ID}), repo.ErrNotFound)
}

func (s *Suite) TestAssignTasksMirrorsAssignUsers() {
	first := s.newTask("A", "a", task.TypeTask)
	second := s.newTask("B", "b", task.TypeBug)
	alice := s.newUser("Alice", "alice@example.com")

	s.Require().NoError(s.Repo.AssignTasks(s.Ctx, alice.ID, []int64{second.ID, first.ID}))
	s.Require().NoError(s.Repo.AssignTasks(s.Ctx, alice.ID, []int64{first.ID}))

	tasks, err := s.Repo.GetUserTasks(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal([]int64{first.ID, second.ID}, taskIDs(tasks))
	s.Equal([]int64{alice.ID}, userIDs(tasks[0].AssignedUsers))

	s.ErrorIs(s.Repo.AssignTasks(s.Ctx, 9999, []int64{first.ID}), repo.ErrNotFound)
}

func (s *Suite) TestDeleteTaskRemovesAssignments() {
	t := s.newTask("Temp", "Throwaway", task.TypeTask)
	alice := s.newUser("Alice", "alice@example.com")
	s.Require().NoError(s.Repo.AssignUsers(s.Ctx, t.ID, []int64{alice.ID}))

	s.Require().NoError(s.Repo.DeleteTask(s.Ctx, t.ID))

	_, err := s.Repo.GetTaskByID(s.Ctx, t.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	tasks, err := s.Repo.GetUserTasks(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(tasks)

	_, err = s.Repo.GetUserByID(s.Ctx, alice.ID)
	s.NoError(err)

	s.ErrorIs(s.Repo.DeleteTask(s.Ctx, t.ID), repo.ErrNotFound)
}

func (s *Suite) TestDeleteUserRemovesAssignments() {
	t := s.newTask("Shared", "Two people", task.TypeTask)
	alice := s.newUser("Alice", "alice@example.com")
	bob := s.newUser("Bob", "bob@example.com")
	s.Require().NoError(s.Repo.AssignUsers(s.Ctx, t.ID, []int64{alice.ID, bob.ID}))

	s.Require().NoError(s.Repo.DeleteUser(s.Ctx, alice.ID))

	got, err := s.Repo.GetTaskByID(s.Ctx, t.ID)
	s.Require().NoError(err)
	s.Equal([]int64{bob.ID}, userIDs(got.AssignedUsers))

	s.ErrorIs(s.Repo.DeleteUser(s.Ctx, alice.ID), repo.ErrNotFound)
}

func (s *Suite) TestTaskStats() {
	empty, err := s.Repo.GetTaskStats(s.Ctx)
	s.Require().NoError(err)
	s.Zero(empty.Total)

	s.newTask("A", "a", task.TypeBug)
	s.newTask("B", "b", task.TypeBug)
	done := s.newTask("C", "c", task.TypeFeature)
	done.Status = task.StatusCompleted
	s.Require().NoError(s.Repo.UpdateTask(s.Ctx, done))

	stats, err := s.Repo.GetTaskStats(s.Ctx)
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(2, stats.ByStatus[task.StatusPending])
	s.Equal(1, stats.ByStatus[task.StatusCompleted])
	s.Zero(stats.ByStatus[task.StatusInProgress])
	s.Equal(2, stats.ByType[task.TypeBug])
	s.Equal(1, stats.ByType[task.TypeFeature])
}

func (s *Suite) TestCreateAndGetUser() {
	created := s.newUser("Alice", "Alice@Example.com")
	s.Positive(created.ID)

	got, err := s.Repo.GetUserByID(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Alice", got.Name)
	s.Equal("Alice@example.com", got.Email)
	s.Equal("5550100", got.Mobile)
	s.True(got.IsActive)
	s.True(got.IsStaff)
	s.False(got.IsDeleted)
	s.False(got.HasUsablePassword())

	byEmail, err := s.Repo.GetUserByEmail(s.Ctx, "alice@EXAMPLE.com")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)

	_, err = s.Repo.GetUserByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, repo.ErrNotFound)

	_, err = s.Repo.GetUserByID(s.Ctx, 9999)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *Suite) TestDuplicateEmail() {
	alice := s.newUser("Alice", "alice@example.com")

	clash := user.New("Other", "ALICE@example.com", "1")
	s.ErrorIs(s.Repo.CreateUser(s.Ctx, clash), repo.ErrDuplicateEmail)

	bob := s.newUser("Bob", "bob@example.com")
	bob.Email = alice.Email
	s.ErrorIs(s.Repo.UpdateUser(s.Ctx, bob), repo.ErrDuplicateEmail)
}

func (s *Suite) TestUpdateUser() {
	alice := s.newUser("Alice", "alice@example.com")

	alice.Name = "Alicia"
	alice.Mobile = "777"
	s.Require().NoError(s.Repo.UpdateUser(s.Ctx, alice))

	got, err := s.Repo.GetUserByID(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("Alicia", got.Name)
	s.Equal("777", got.Mobile)

	ghost := user.New("Ghost", "ghost@example.com", "0")
	ghost.ID = 9999
	s.ErrorIs(s.Repo.UpdateUser(s.Ctx, ghost), repo.ErrNotFound)
}

func (s *Suite) TestListAndResolveUsers() {
	alice := s.newUser("Alice", "alice@example.com")
	bob := s.newUser("Bob", "bob@example.com")

	all, err := s.Repo.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]int64{alice.ID, bob.ID}, userIDs(all))

	resolved, err := s.Repo.GetUsersByIDs(s.Ctx, []int64{bob.ID, 9999})
	s.Require().NoError(err)
	s.Equal([]int64{bob.ID}, userIDs(resolved))
}
