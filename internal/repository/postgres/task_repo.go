package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, status, task_type, created_at, updated_at, completed_at`

func scanTask(row scanner) (*task.Task, error) {
	t := &task.Task{AssignedUsers: []*user.User{}}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Type,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer logSlow("create_task", start)

	query := `INSERT INTO tasks
				(title, description, status, task_type, completed_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Type,
		taskToCreate.CompletedAt,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: inserting task failed", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", err)
	}
	taskToCreate.AssignedUsers = []*user.User{}
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer logSlow("get_task", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: selecting task failed", err)
		return nil, fmt.Errorf("selecting task: %w", err)
	}
	if err := s.loadAssignees(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) GetTasksByIDs(ctx context.Context, ids []int64) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("get_tasks_by_ids", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ANY($1) ORDER BY id`
	return s.queryTasks(ctx, query, ids)
}

func (s *Storage) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("list_tasks", start)

	conditions := []string{}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("task_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, repo.ContainsPattern(filter.Search))
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d ESCAPE '%s' OR description ILIKE $%d ESCAPE '%s')", n, repo.LikeEscape, n, repo.LikeEscape))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`
	return s.queryTasks(ctx, query, args...)
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: selecting tasks failed", err)
		return nil, fmt.Errorf("selecting tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: scanning task failed", err)
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating rows failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if err := s.loadAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadAssignees fills AssignedUsers of every task with one query.
func (s *Storage) loadAssignees(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*task.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query := `SELECT ta.task_id, ` + prefixedUserColumns + `
				FROM task_assignees ta
				JOIN users u ON u.id = ta.user_id
				WHERE ta.task_id = ANY($1)
				ORDER BY ta.task_id, u.id`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		logger.Error("Repository: selecting assignees failed", err)
		return fmt.Errorf("selecting assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		u := &user.User{}
		if err := rows.Scan(append([]any{&taskID}, userFields(u)...)...); err != nil {
			return fmt.Errorf("scanning assignee: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.AssignedUsers = append(t.AssignedUsers, u)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating assignees: %w", err)
	}
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer logSlow("update_task", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				task_type = $4,
				completed_at = $5,
				updated_at = NOW()
			WHERE id = $6
			RETURNING created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Type,
		taskToUpdate.CompletedAt,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.CreatedAt, &taskToUpdate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: updating task failed", err)
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// DeleteTask relies on ON DELETE CASCADE to drop the task's assignments.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	start := time.Now()
	defer logSlow("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting task failed", err)
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetTaskStats(ctx context.Context) (*task.Stats, error) {
	start := time.Now()
	defer logSlow("task_stats", start)

	rows, err := s.pool.Query(ctx, `SELECT status, task_type, COUNT(*) FROM tasks GROUP BY status, task_type`)
	if err != nil {
		logger.Error("Repository: counting tasks failed", err)
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()

	stats := task.NewStats()
	for rows.Next() {
		var (
			status   task.Status
			taskType task.Type
			count    int
		)
		if err := rows.Scan(&status, &taskType, &count); err != nil {
			return nil, fmt.Errorf("scanning counts: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByType[taskType] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return stats, nil
}

func (s *Storage) AssignUsers(ctx context.Context, taskID int64, userIDs []int64) error {
	start := time.Now()
	defer logSlow("assign_users", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockRow(ctx, tx, `SELECT id FROM tasks WHERE id = $1 FOR SHARE`, taskID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO task_assignees (task_id, user_id)
				SELECT $1::bigint, u.id FROM users u WHERE u.id = ANY($2::bigint[])
				ON CONFLICT DO NOTHING`, taskID, userIDs)
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		logger.Error("Repository: assigning users failed", err)
		return fmt.Errorf("assigning users: %w", err)
	}
	return nil
}

func lockRow(ctx context.Context, tx pgx.Tx, query string, id int64) error {
	var locked int64
	if err := tx.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		return err
	}
	return nil
}
