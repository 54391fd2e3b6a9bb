package task

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/artem13815/bonsai/pkg/auth"
)

const (
	DefaultLimit = 100
	MaxLimit     = 200
)

// UseCase is task CRUD on behalf of an authenticated principal.
type UseCase interface {
	Create(ctx context.Context, p auth.Principal, in CreateInput) (Task, error)
	List(ctx context.Context, p auth.Principal, f Filter) ([]Task, error)
	Get(ctx context.Context, p auth.Principal, id int64) (Task, error)
	Update(ctx context.Context, p auth.Principal, id int64, in UpdateInput) (Task, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
	Toggle(ctx context.Context, p auth.Principal, id int64) (Task, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, validate: auth.NewValidator(), now: time.Now}
}

func (s *service) Create(ctx context.Context, p auth.Principal, in CreateInput) (Task, error) {
	if err := auth.RequirePrincipal(p); err != nil {
		return Task{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := auth.Validate(s.validate, in); err != nil {
		return Task{}, err
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, Task{
		UserID:      auth.StampOwner(p),
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *service) List(ctx context.Context, p auth.Principal, f Filter) ([]Task, error) {
	if err := auth.RequirePrincipal(p); err != nil {
		return nil, err
	}
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	items, err := s.repo.List(ctx, p.UserID, f)
	if err != nil {
		return nil, err
	}
	return auth.FilterOwned(p, items), nil
}

func (s *service) Get(ctx context.Context, p auth.Principal, id int64) (Task, error) {
	if err := auth.RequirePrincipal(p); err != nil {
		return Task{}, err
	}
	t, err := s.repo.Get(ctx, id)
	return auth.Authorize(p, t, err)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id int64, in UpdateInput) (Task, error) {
	t, err := s.Get(ctx, p, id)
	if err != nil {
		return Task{}, err
	}
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if err := auth.Validate(s.validate, CreateInput{Title: t.Title, Description: t.Description}); err != nil {
		return Task{}, err
	}
	t.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, t)
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id int64) error {
	t, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, t.UserID, t.ID)
}

func (s *service) Toggle(ctx context.Context, p auth.Principal, id int64) (Task, error) {
	if err := auth.RequirePrincipal(p); err != nil {
		return Task{}, err
	}
	t, err := s.repo.Toggle(ctx, p.UserID, id, s.now().UTC())
	return auth.Authorize(p, t, err)
}
