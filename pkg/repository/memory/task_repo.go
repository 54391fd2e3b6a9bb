package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artem13815/bonsai/pkg/auth"
	"github.com/artem13815/bonsai/pkg/task"
)

// TaskRepository implements task.Repository in memory.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]task.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{items: make(map[int64]task.Task)}
}

func (r *TaskRepository) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.items[t.ID] = t
	return t, nil
}

func (r *TaskRepository) Get(_ context.Context, id int64) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return task.Task{}, auth.ErrNotFound
	}
	return t, nil
}

// List returns the owner's tasks newest first.
func (r *TaskRepository) List(_ context.Context, ownerID int64, f task.Filter) ([]task.Task, error) {
	r.mu.RLock()
	out := make([]task.Task, 0)
	for _, t := range r.items {
		if t.UserID != ownerID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []task.Task{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[t.ID]
	if !ok || cur.UserID != t.UserID {
		return task.Task{}, auth.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	r.items[t.ID] = t
	return t, nil
}

func (r *TaskRepository) Toggle(_ context.Context, ownerID, id int64, updatedAt time.Time) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.Task{}, auth.ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = updatedAt
	r.items[id] = t
	return t, nil
}

func (r *TaskRepository) Delete(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[id]
	if !ok || cur.UserID != ownerID {
		return auth.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TaskRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
