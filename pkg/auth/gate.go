package auth

import (
	"context"
	"errors"
)

// Owned is any resource that records the user it belongs to.
type Owned interface {
	OwnerID() int64
}

// Gate is the single entry point protected operations use to obtain a caller.
type Gate struct {
	resolver IdentityResolver
}

func NewGate(resolver IdentityResolver) *Gate {
	return &Gate{resolver: resolver}
}

// RequireAuth resolves the Authorization header or fails with ErrUnauthenticated.
func (g *Gate) RequireAuth(ctx context.Context, authorization string) (Principal, error) {
	p, err := g.resolver.Resolve(ctx, authorization)
	if err != nil {
		return Principal{}, err
	}
	if err := RequirePrincipal(p); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// RequirePrincipal rejects an empty principal.
func RequirePrincipal(p Principal) error {
	if p.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

// EnforceOwnership answers ErrNotFound when ownerID is not the principal,
// so callers cannot tell a foreign resource from a missing one.
func EnforceOwnership(p Principal, ownerID int64) error {
	if err := RequirePrincipal(p); err != nil {
		return err
	}
	if ownerID != p.UserID {
		return ErrNotFound
	}
	return nil
}

// Authorize folds a repository lookup result through the ownership check.
func Authorize[T Owned](p Principal, res T, loadErr error) (T, error) {
	var zero T
	if err := RequirePrincipal(p); err != nil {
		return zero, err
	}
	if loadErr != nil {
		if errors.Is(loadErr, ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, loadErr
	}
	if err := EnforceOwnership(p, res.OwnerID()); err != nil {
		return zero, err
	}
	return res, nil
}

// FilterOwned drops every item the principal does not own.
func FilterOwned[T Owned](p Principal, items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if EnforceOwnership(p, it.OwnerID()) == nil {
			out = append(out, it)
		}
	}
	return out
}

// StampOwner is the only source of the owner for a new resource.
func StampOwner(p Principal) int64 {
	return p.UserID
}
