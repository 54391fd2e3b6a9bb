package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// IdentityResolver turns a raw Authorization header into a Principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, authorization string) (Principal, error)
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>" value.
func ExtractBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Resolver verifies bearer tokens and reloads their user on every call.
type Resolver struct {
	codec TokenCodec
	users UserRepository
	opts  options
}

func NewResolver(codec TokenCodec, users UserRepository, opts ...Option) *Resolver {
	return &Resolver{codec: codec, users: users, opts: applyOptions(opts)}
}

// Resolve returns *AuthError for every identity problem. Storage failures
// are returned as plain errors so callers fail closed with a server error.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (Principal, error) {
	raw, err := ExtractBearer(authorization)
	if err != nil {
		return Principal{}, r.reject(err, 0)
	}
	claims, err := r.codec.Verify(raw, r.opts.now())
	if err != nil {
		return Principal{}, r.reject(err, 0)
	}
	user, err := r.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Principal{}, r.reject(ErrUserNotFound, claims.UserID)
		}
		return Principal{}, fmt.Errorf("load principal %d: %w", claims.UserID, err)
	}
	// the row behind user_id was replaced or renamed since issuance
	if user.Username != claims.Subject {
		return Principal{}, r.reject(ErrUserNotFound, claims.UserID)
	}
	return user.Principal, nil
}

func (r *Resolver) reject(reason error, userID int64) error {
	label := RejectionReason(reason)
	fields := []zap.Field{zap.String("reason", label)}
	if userID > 0 {
		fields = append(fields, zap.Int64("user_id", userID))
	}
	r.opts.log.Info("token rejected", fields...)
	r.opts.observer.TokenRejected(label)
	return newAuthError(reason)
}
