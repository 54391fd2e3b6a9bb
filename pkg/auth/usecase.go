package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SessionUseCase describes registration, login and token introspection.
type SessionUseCase interface {
	Register(ctx context.Context, in RegisterInput) (Principal, error)
	Login(ctx context.Context, username, password string) (AccessToken, error)
	WhoAmI(p Principal) (PublicProfile, error)
	Verify(ctx context.Context, token string) (TokenStatus, error)
}

// dummySecret is hashed once so unknown usernames cost one verification too.
const dummySecret = "bonsai-timing-equalizer-secret"

type sessionService struct {
	users     UserRepository
	hasher    PasswordHasher
	tokens    TokenCodec
	validate  *validator.Validate
	dummyHash string
	opts      options
}

// NewSessionService returns default implementation of SessionUseCase.
func NewSessionService(users UserRepository, hasher PasswordHasher, tokens TokenCodec, opts ...Option) (SessionUseCase, error) {
	dummy, err := hasher.Hash([]byte(dummySecret))
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &sessionService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validate:  NewValidator(),
		dummyHash: dummy,
		opts:      applyOptions(opts),
	}, nil
}

func (s *sessionService) Register(ctx context.Context, in RegisterInput) (Principal, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := Validate(s.validate, in); err != nil {
		s.opts.observer.Registration("invalid")
		return Principal{}, err
	}

	secret := []byte(in.Password)
	hash, err := s.hasher.Hash(secret)
	clear(secret)
	if err != nil {
		return Principal{}, fmt.Errorf("hash password: %w", err)
	}

	// the unique constraints decide races between concurrent registrations
	user, err := s.users.Insert(ctx, in.Username, in.Email, hash)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			s.opts.observer.Registration("conflict")
			s.opts.log.Info("registration rejected", zap.String("username", in.Username), zap.Error(err))
			return Principal{}, err
		}
		s.opts.observer.Registration("error")
		return Principal{}, fmt.Errorf("insert user: %w", err)
	}
	s.opts.observer.Registration("success")
	s.opts.log.Info("user registered", zap.Int64("user_id", user.UserID), zap.String("username", user.Username))
	return user.Principal, nil
}

func (s *sessionService) Login(ctx context.Context, username, password string) (AccessToken, error) {
	secret := []byte(password)
	defer clear(secret)

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.opts.observer.LoginAttempt("error")
			return AccessToken{}, fmt.Errorf("load user: %w", err)
		}
		s.hasher.Verify(secret, s.dummyHash)
		return AccessToken{}, s.loginFailed(username, "user_not_found")
	}
	if len(secret) == 0 || !s.hasher.Verify(secret, user.PasswordHash) {
		return AccessToken{}, s.loginFailed(username, "wrong_password")
	}

	token, err := s.tokens.Issue(user.Username, user.UserID, s.opts.now())
	if err != nil {
		s.opts.observer.LoginAttempt("error")
		return AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	s.opts.observer.LoginAttempt("success")
	s.opts.log.Info("login succeeded", zap.Int64("user_id", user.UserID))
	return token, nil
}

func (s *sessionService) loginFailed(username, reason string) error {
	s.opts.observer.LoginAttempt("failure")
	s.opts.log.Info("login failed", zap.String("username", username), zap.String("reason", reason))
	return ErrInvalidCredentials
}

func (s *sessionService) WhoAmI(p Principal) (PublicProfile, error) {
	if err := RequirePrincipal(p); err != nil {
		return PublicProfile{}, err
	}
	return PublicProfile{
		ID:        p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}, nil
}

// Verify checks signature and expiry only; it does not touch storage.
func (s *sessionService) Verify(_ context.Context, token string) (TokenStatus, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenStatus{}, s.rejectToken(ErrMissingToken)
	}
	claims, err := s.tokens.Verify(token, s.opts.now())
	if err != nil {
		return TokenStatus{}, s.rejectToken(err)
	}
	return TokenStatus{UserID: claims.UserID, Username: claims.Subject}, nil
}

func (s *sessionService) rejectToken(reason error) error {
	label := RejectionReason(reason)
	s.opts.log.Info("token rejected", zap.String("reason", label))
	s.opts.observer.TokenRejected(label)
	return newAuthError(reason)
}
