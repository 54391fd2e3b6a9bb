// Package memory holds in-process repositories for tests and STORAGE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artem13815/bonsai/pkg/auth"
)

// UserRepository implements auth.UserRepository with maps under one mutex.
type UserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]auth.User
	byUsername map[string]int64
	byEmail    map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[int64]auth.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
	}
}

// Insert checks both uniqueness indexes and stores the row in one critical section.
func (r *UserRepository) Insert(_ context.Context, username, email, passwordHash string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[username]; ok {
		return auth.User{}, auth.ErrUsernameTaken
	}
	if _, ok := r.byEmail[email]; ok {
		return auth.User{}, auth.ErrEmailTaken
	}
	r.nextID++
	u := auth.User{
		Principal: auth.Principal{
			UserID:    r.nextID,
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	r.byID[u.UserID] = u
	r.byUsername[username] = u.UserID
	r.byEmail[email] = u.UserID
	return u, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

// Delete removes a user. Tasks are not cascaded here.
func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	delete(r.byEmail, u.Email)
	return nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
