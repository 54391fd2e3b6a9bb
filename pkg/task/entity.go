package task

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerID implements auth.Owned.
func (t Task) OwnerID() int64 { return t.UserID }

// CreateInput carries fields a client may set on a new task.
type CreateInput struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Completed   bool   `json:"completed"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Filter narrows List results.
type Filter struct {
	Completed *bool
	Limit     int
	Offset    int
}
