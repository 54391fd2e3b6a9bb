package task

import (
	"context"
	"time"
)

// Repository persists tasks. Get returns auth.ErrNotFound for unknown ids.
// Update, Toggle and Delete are scoped by owner and report auth.ErrNotFound
// when no row of that owner matches. Toggle flips completed in one step.
type Repository interface {
	Create(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	List(ctx context.Context, ownerID int64, f Filter) ([]Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	Toggle(ctx context.Context, ownerID, id int64, updatedAt time.Time) (Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Count(ctx context.Context) (int64, error)
}
