package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, mobile, password, is_active, is_deleted, is_staff, created_at, updated_at`

const prefixedUserColumns = `u.id, u.name, u.email, u.mobile, u.password, u.is_active, u.is_deleted, u.is_staff, u.created_at, u.updated_at`

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

	query := `INSERT INTO users
				(name, email, mobile, password, is_active, is_deleted, is_staff)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		userToCreate.Name,
		userToCreate.Email,
		userToCreate.Mobile,
		userToCreate.Password,
		userToCreate.IsActive,
		userToCreate.IsDeleted,
		userToCreate.IsStaff,
	).Scan(&userToCreate.ID, &userToCreate.CreatedAt, &userToCreate.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: inserting user failed", err)
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()
	defer logSlow("get_user", start)

	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: selecting user failed", err)
		return nil, fmt.Errorf("selecting user: %w", err)
	}
	return u, nil
}

func (s *Storage) GetUsersByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
}

func (s *Storage) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (s *Storage) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	start := time.Now()
	defer logSlow("list_users", start)

	rows, err := s.pool.Query(ctx, query, args...)
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

	query := `UPDATE users
			SET name = $1,
				email = $2,
				mobile = $3,
				updated_at = NOW()
			WHERE id = $4
			RETURNING created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		userToUpdate.Name,
		userToUpdate.Email,
		userToUpdate.Mobile,
		userToUpdate.ID,
	).Scan(&userToUpdate.CreatedAt, &userToUpdate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repo.ErrDuplicateEmail
		}
		logger.Error("Repository: updating user failed", err)
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()
	defer logSlow("delete_user", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting user failed", err)
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetUserTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("get_user_tasks", start)

	query := `SELECT t.id, t.title, t.description, t.status, t.task_type, t.created_at, t.updated_at, t.completed_at
				FROM tasks t
				JOIN task_assignees ta ON ta.task_id = t.id
				WHERE ta.user_id = $1
				ORDER BY t.id`
	return s.queryTasks(ctx, query, userID)
}

func (s *Storage) AssignTasks(ctx context.Context, userID int64, taskIDs []int64) error {
	start := time.Now()
	defer logSlow("assign_tasks", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockRow(ctx, tx, `SELECT id FROM users WHERE id = $1 FOR SHARE`, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO task_assignees (task_id, user_id)
				SELECT t.id, $1::bigint FROM tasks t WHERE t.id = ANY($2::bigint[])
				ON CONFLICT DO NOTHING`, userID, taskIDs)
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		logger.Error("Repository: assigning tasks failed", err)
		return fmt.Errorf("assigning tasks: %w", err)
	}
	return nil
}
