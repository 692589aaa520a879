package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

const userColumns = `u.id, u.name, u.email, u.mobile, u.password, u.is_active, u.is_deleted, u.is_staff, u.created_at, u.updated_at`

func userFields(u *user.User) []any {
	return []any{
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Mobile,
		&u.Password,
		&u.IsActive,
		&u.IsDeleted,
		&u.IsStaff,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
}

func scanUser(row scanner) (*user.User, error) {
	u := &user.User{}
	if err := row.Scan(userFields(u)...); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()
	defer logSlow("create_user", start)

	created := now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO users
				(name, email, mobile, password, is_active, is_deleted, is_staff, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userToCreate.Name,
		userToCreate.Email,
		userToCreate.Mobile,
		userToCreate.Password,
		userToCreate.IsActive,
		userToCreate.IsDeleted,
		userToCreate.IsStaff,
		created,
		created,
	)
	if err != nil {
		if s.isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: inserting user failed", err)
		return fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}

	userToCreate.ID = id
	userToCreate.CreatedAt = created
	userToCreate.UpdatedAt = created
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users u WHERE `+s.lower("u.email")+` = `+s.lower("?"), email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()
	defer logSlow("get_user", start)

	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: selecting user failed", err)
		return nil, fmt.Errorf("selecting user: %w", err)
	}
	return u, nil
}

func (s *Storage) GetUsersByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}
	marks, args := placeholders(ids)
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id IN (`+marks+`) ORDER BY u.id`, args...)
}

func (s *Storage) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
}

func (s *Storage) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	start := time.Now()
	defer logSlow("list_users", start)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: selecting users failed", err)
		return nil, fmt.Errorf("selecting users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating rows failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, userToUpdate *user.User) error {
	start := time.Now()
	defer logSlow("update_user", start)

	updated := now()
	res, err := s.db.ExecContext(ctx, `UPDATE users
			SET name = ?,
				email = ?,
				mobile = ?,
				updated_at = ?
			WHERE id = ?`,
		userToUpdate.Name,
		userToUpdate.Email,
		userToUpdate.Mobile,
		updated,
		userToUpdate.ID,
	)
	if err != nil {
		if s.isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: updating user failed", err)
		return fmt.Errorf("updating user: %w", err)
	}
	if err := s.expectRow(ctx, res, `SELECT COUNT(*) FROM users WHERE id = ?`, userToUpdate.ID); err != nil {
		return err
	}
	userToUpdate.UpdatedAt = updated
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()
	defer logSlow("delete_user", start)

	return s.deleteWithAssignments(ctx, `DELETE FROM users WHERE id = ?`, `DELETE FROM task_assignees WHERE user_id = ?`, id)
}

func (s *Storage) GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("get_user_tasks", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks t
				JOIN task_assignees ta ON ta.task_id = t.id
				WHERE ta.user_id = ?
				ORDER BY t.id`
	return s.queryTasks(ctx, query, userID)
}

func (s *Storage) AssignTasks(ctx context.Context, userID int64, taskIDs []int64) error {
	start := time.Now()
	defer logSlow("assign_tasks", start)

	if len(taskIDs) == 0 {
		return nil
	}
	marks, args := placeholders(taskIDs)
	insert := s.insertIgnore() + ` task_assignees (task_id, user_id)
				SELECT t.id, ? FROM tasks t WHERE t.id IN (` + marks + `)`
	return s.assign(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID, insert, append([]any{userID}, args...))
}
