package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.task_type, t.created_at, t.updated_at, t.completed_at`

func scanTask(row scanner) (*task.Task, error) {
	var (
		t           = &task.Task{AssignedUsers: []*user.User{}}
		status      string
		taskType    string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&taskType,
		&t.CreatedAt,
		&t.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	t.Type = task.Type(taskType)
	if completedAt.Valid {
		completed := completedAt.Time
		t.CompletedAt = &completed
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer logSlow("create_task", start)

	created := now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks
				(title, description, status, task_type, created_at, updated_at, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
		taskToCreate.Title,
		taskToCreate.Description,
		string(taskToCreate.Status),
		string(taskToCreate.Type),
		created,
		created,
		nullTime(taskToCreate.CompletedAt),
	)
	if err != nil {
		logger.Error("Repository: inserting task failed", err)
		return fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading task id: %w", err)
	}

	taskToCreate.ID = id
	taskToCreate.CreatedAt = created
	taskToCreate.UpdatedAt = created
	taskToCreate.AssignedUsers = []*user.User{}
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer logSlow("get_task", start)

	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	if len(ids) == 0 {
		return []*task.Task{}, nil
	}
	marks, args := placeholders(ids)
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id IN (`+marks+`) ORDER BY t.id`, args...)
}

func (s *Storage) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("list_tasks", start)

	conditions := []string{}
	args := []any{}
	if filter.Status != "" {
		conditions = append(conditions, "t.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Type != "" {
		conditions = append(conditions, "t.task_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Search != "" {
		pattern := strings.ToLower(repo.ContainsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf(
			"(%s LIKE ? ESCAPE '%s' OR %s LIKE ? ESCAPE '%s')",
			s.lower("t.title"), repo.LikeEscape, s.lower("t.description"), repo.LikeEscape))
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks t`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY t.id`
	return s.queryTasks(ctx, query, args...)
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: selecting tasks failed", err)
		return nil, fmt.Errorf("selecting tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating rows failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	// sqlite allows one connection, the rows must be released before the next query
	rows.Close()

	if err := s.loadAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

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

	marks, args := placeholders(ids)
	query := `SELECT ta.task_id, ` + userColumns + `
				FROM task_assignees ta
				JOIN users u ON u.id = ta.user_id
				WHERE ta.task_id IN (` + marks + `)
				ORDER BY ta.task_id, u.id`
	rows, err := s.db.QueryContext(ctx, query, args...)
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

	updated := now()
	res, err := s.db.ExecContext(ctx, `UPDATE tasks
			SET title = ?,
				description = ?,
				status = ?,
				task_type = ?,
				completed_at = ?,
				updated_at = ?
			WHERE id = ?`,
		taskToUpdate.Title,
		taskToUpdate.Description,
		string(taskToUpdate.Status),
		string(taskToUpdate.Type),
		nullTime(taskToUpdate.CompletedAt),
		updated,
		taskToUpdate.ID,
	)
	if err != nil {
		logger.Error("Repository: updating task failed", err)
		return fmt.Errorf("updating task: %w", err)
	}
	if err := s.expectRow(ctx, res, `SELECT COUNT(*) FROM tasks WHERE id = ?`, taskToUpdate.ID); err != nil {
		return err
	}
	taskToUpdate.UpdatedAt = updated
	return nil
}

// expectRow reports ErrNotFound when a write touched nothing. MySQL counts only
// changed rows, so a zero count is confirmed with a lookup.
func (s *Storage) expectRow(ctx context.Context, res sql.Result, query string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return fmt.Errorf("checking row: %w", err)
	}
	if count == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteTask removes the join rows explicitly, it does not depend on foreign key enforcement.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	start := time.Now()
	defer logSlow("delete_task", start)

	return s.deleteWithAssignments(ctx, `DELETE FROM tasks WHERE id = ?`, `DELETE FROM task_assignees WHERE task_id = ?`, id)
}

func (s *Storage) deleteWithAssignments(ctx context.Context, deleteRow, deleteJoins string, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteJoins, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, deleteRow, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: delete failed", err)
		return fmt.Errorf("deleting: %w", err)
	}
	return err
}

func (s *Storage) GetTaskStats(ctx context.Context) (*task.Stats, error) {
	start := time.Now()
	defer logSlow("task_stats", start)

	rows, err := s.db.QueryContext(ctx, `SELECT status, task_type, COUNT(*) FROM tasks GROUP BY status, task_type`)
	if err != nil {
		logger.Error("Repository: counting tasks failed", err)
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()

	stats := task.NewStats()
	for rows.Next() {
		var (
			status   string
			taskType string
			count    int
		)
		if err := rows.Scan(&status, &taskType, &count); err != nil {
			return nil, fmt.Errorf("scanning counts: %w", err)
		}
		stats.Total += count
		stats.ByStatus[task.Status(status)] += count
		stats.ByType[task.Type(taskType)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return stats, nil
}

func (s *Storage) AssignUsers(ctx context.Context, taskID int64, userIDs []int64) error {
	start := time.Now()
	defer logSlow("assign_users", start)

	if len(userIDs) == 0 {
		return nil
	}
	marks, args := placeholders(userIDs)
	insert := s.insertIgnore() + ` task_assignees (task_id, user_id)
				SELECT ?, u.id FROM users u WHERE u.id IN (` + marks + `)`
	return s.assign(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, taskID, insert, append([]any{taskID}, args...))
}

// assign checks the owning row and inserts the memberships in one transaction.
func (s *Storage) assign(ctx context.Context, ownerQuery string, ownerID int64, insert string, args []any) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, ownerQuery, ownerID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return repo.ErrNotFound
		}
		_, err := tx.ExecContext(ctx, insert, args...)
		return err
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: assignment failed", err)
		return fmt.Errorf("assigning: %w", err)
	}
	return err
}
