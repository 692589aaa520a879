package service

import (
	"context"
	"errors"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const emailTakenReason = "user with this email already exists."

// CreateUser stores a new user. Without a password the credential is made unusable.
func (s *Service) CreateUser(ctx context.Context, name, email, mobile, password string) (*user.User, error) {
	newUser := user.New(name, email, mobile)

	if err := s.ensureEmailFree(ctx, newUser.Email, 0); err != nil {
		return nil, err
	}

	credential, err := makeCredential(password)
	if err != nil {
		return nil, err
	}
	newUser.Password = credential

	if err := s.repo.CreateUser(ctx, newUser); err != nil {
		if errors.Is(err, rep.ErrDuplicateEmail) {
			return nil, NewValidationError("email", emailTakenReason)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.Info("Service: user created", zap.Int64("user_id", newUser.ID))
	return newUser, nil
}

func makeCredential(password string) (string, error) {
	if password == "" {
		return user.UnusablePasswordPrefix + uuid.NewString(), nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", NewValidationError("password", "Ensure this field has no more than 72 bytes.")
		}
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("looking up email: %w", err)
	}
	if existing.ID != ownerID {
		return NewValidationError("email", emailTakenReason)
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: user not found", zap.Int64("user_id", id))
			return nil, NewNotFound(ResourceUser, id)
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*user.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, options ...user.UserOption) (*user.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	previousEmail := u.Email
	for _, opt := range options {
		if opt != nil {
			opt(u)
		}
	}
	if u.Email != previousEmail {
		if err := s.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, rep.ErrNotFound):
			return nil, NewNotFound(ResourceUser, id)
		case errors.Is(err, rep.ErrDuplicateEmail):
			return nil, NewValidationError("email", emailTakenReason)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: user not found", zap.Int64("user_id", id))
			return NewNotFound(ResourceUser, id)
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	logger.Info("Service: user deleted", zap.Int64("user_id", id))
	return nil
}

func (s *Service) GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.GetUserTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user tasks: %w", err)
	}
	return tasks, nil
}

// AssignUser is the mirror of AssignTask: one user, many tasks. The user is
// returned; its tasks are read through GetUserTasks.
func (s *Service) AssignUser(ctx context.Context, userID int64, taskIDs []int64) (*user.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	wanted := uniqueIDs(taskIDs)
	tasks, err := s.repo.GetTasksByIDs(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("resolving tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, NewNoneFound(ResourceTasks, wanted)
	}

	found := make(map[int64]struct{}, len(tasks))
	resolved := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		found[t.ID] = struct{}{}
		resolved = append(resolved, t.ID)
	}
	if missing := missingIDs(wanted, found); len(missing) > 0 {
		if s.strictAssignment {
			return nil, NewBusinessError(CodeNotFound, "Some tasks not found",
				ToDetail("resource", ResourceTasks),
				ToDetail("ids", missing))
		}
		logger.Warn("Service: skipping unknown tasks on assignment",
			zap.Int64("user_id", userID),
			zap.Int64s("missing_task_ids", missing))
	}

	if err := s.repo.AssignTasks(ctx, userID, resolved); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, userID)
		}
		return nil, fmt.Errorf("assigning tasks: %w", err)
	}

	logger.Info("Service: tasks assigned",
		zap.Int64("user_id", userID),
		zap.Int64s("task_ids", resolved))
	return u, nil
}
