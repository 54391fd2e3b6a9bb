package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/bonsai/pkg/auth"
	"github.com/artem13815/bonsai/pkg/task"
)

// TaskRepository stores tasks in the tasks table.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO tasks (user_id, title, description, completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	out, err := scanTask(row)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (task.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, auth.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

// List returns the owner's tasks newest first.
func (r *TaskRepository) List(ctx context.Context, ownerID int64, f task.Filter) ([]task.Task, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE user_id = $1 AND ($2::boolean IS NULL OR completed = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`, ownerID, f.Completed, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, t task.Task) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE tasks
SET title = $3, description = $4, completed = $5, updated_at = $6
WHERE id = $1 AND user_id = $2
RETURNING `+taskColumns,
		t.ID, t.UserID, t.Title, t.Description, t.Completed, t.UpdatedAt)
	out, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, auth.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Toggle(ctx context.Context, ownerID, id int64, updatedAt time.Time) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE tasks
SET completed = NOT completed, updated_at = $3
WHERE id = $1 AND user_id = $2
RETURNING `+taskColumns,
		id, ownerID, updatedAt)
	out, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, auth.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}
