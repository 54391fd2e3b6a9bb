package auth

import "context"

// UserRepository is the credential store seen by the auth core.
// Implementations must enforce username and email uniqueness at insert time
// and report conflicts as ErrUsernameTaken or ErrEmailTaken.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Insert(ctx context.Context, username, email, passwordHash string) (User, error)
}
