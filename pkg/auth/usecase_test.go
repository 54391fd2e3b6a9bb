package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/artem13815/bonsai/pkg/auth"
	"github.com/artem13815/bonsai/pkg/repository/memory"
	"github.com/artem13815/bonsai/pkg/security/jwt"
	"github.com/artem13815/bonsai/pkg/security/password"
)

type recordingObserver struct {
	mu         sync.Mutex
	logins     []string
	regs       []string
	rejections []string
}

func (o *recordingObserver) LoginAttempt(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins = append(o.logins, r)
}

func (o *recordingObserver) Registration(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.regs = append(o.regs, r)
}

func (o *recordingObserver) TokenRejected(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejections = append(o.rejections, r)
}

type harness struct {
	svc      auth.SessionUseCase
	resolver *auth.Resolver
	gate     *auth.Gate
	users    *memory.UserRepository
	codec    *jwt.Codec
	logs     *observer.ObservedLogs
	obs      *recordingObserver
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users: memory.NewUserRepository(),
		obs:   &recordingObserver{},
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	core, logs := observer.New(zap.InfoLevel)
	h.logs = logs

	codec, err := jwt.NewCodec("test-secret")
	require.NoError(t, err)
	h.codec = codec

	opts := []auth.Option{
		auth.WithClock(func() time.Time { return h.now }),
		auth.WithLogger(zap.New(core)),
		auth.WithObserver(h.obs),
	}
	hasher := password.NewArgon2idHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	h.svc, err = auth.NewSessionService(h.users, hasher, codec, opts...)
	require.NoError(t, err)
	h.resolver = auth.NewResolver(codec, h.users, opts...)
	h.gate = auth.NewGate(h.resolver)
	return h
}

func (h *harness) register(t *testing.T, username, email, pw string) auth.Principal {
	t.Helper()
	p, err := h.svc.Register(context.Background(), auth.RegisterInput{Username: username, Email: email, Password: pw})
	require.NoError(t, err)
	return p
}

func TestSessionScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	alice := h.register(t, "alice", "alice@x.com", "pw12345678")
	assert.Positive(t, alice.UserID)
	assert.Equal(t, "alice", alice.Username)

	tok, err := h.svc.Login(ctx, "alice", "pw12345678")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	p, err := h.resolver.Resolve(ctx, "Bearer "+tok.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, p.UserID)
	assert.Equal(t, "alice", p.Username)

	_, err = h.svc.Login(ctx, "alice", "wrongpw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = h.svc.Register(ctx, auth.RegisterInput{Username: "alice", Email: "other@x.com", Password: "pw12345678"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestRegisterThenLoginTokenCarriesUserID(t *testing.T) {
	h := newHarness(t)
	for _, u := range []string{"bob", "carol", "dave"} {
		p := h.register(t, u, u+"@example.com", "s3cret-"+u)
		tok, err := h.svc.Login(context.Background(), u, "s3cret-"+u)
		require.NoError(t, err)
		claims, err := h.codec.Verify(tok.Token, h.now)
		require.NoError(t, err)
		assert.Equal(t, p.UserID, claims.UserID)
		assert.Equal(t, u, claims.Subject)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Register(context.Background(), auth.RegisterInput{Username: "al", Email: "nope", Password: "short"})
	require.ErrorIs(t, err, auth.ErrValidation)

	var verr *auth.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "min=3", verr.Fields["username"])
	assert.Equal(t, "email", verr.Fields["email"])
	assert.Equal(t, "min=8", verr.Fields["password"])
	assert.Equal(t, []string{"invalid"}, h.obs.regs)
}

func TestRegisterPasswordLimitCountsBytes(t *testing.T) {
	h := newHarness(t)
	// 600 runes, 1200 bytes
	_, err := h.svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Email: "a@x.com", Password: strings.Repeat("é", 600)})
	require.ErrorIs(t, err, auth.ErrValidation)
	var verr *auth.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "maxbytes=1024", verr.Fields["password"])

	p := h.register(t, "alice", "a@x.com", strings.Repeat("é", 512))
	assert.Equal(t, "alice", p.Username)
}

func TestRegisterEmailTakenIsCaseInsensitive(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "alice@x.com", "pw12345678")

	_, err := h.svc.Register(context.Background(), auth.RegisterInput{Username: "alice2", Email: "  ALICE@x.com ", Password: "pw12345678"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegisterUsernameIsCaseSensitive(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "alice@x.com", "pw12345678")
	p := h.register(t, "Alice", "alice2@x.com", "pw12345678")
	assert.Equal(t, "Alice", p.Username)
}

func TestConcurrentRegisterSameUsername(t *testing.T) {
	for round := 0; round < 20; round++ {
		h := newHarness(t)
		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = h.svc.Register(context.Background(), auth.RegisterInput{
					Username: "racer",
					Email:    []string{"a@x.com", "b@x.com"}[i],
					Password: "pw12345678",
				})
			}(i)
		}
		close(start)
		wg.Wait()

		var ok, taken int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, auth.ErrUsernameTaken):
				taken++
			}
		}
		require.Equal(t, 1, ok, "round %d", round)
		require.Equal(t, 1, taken, "round %d", round)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "alice@x.com", "pw12345678")
	ctx := context.Background()

	_, errUnknown := h.svc.Login(ctx, "mallory", "pw12345678")
	_, errWrong := h.svc.Login(ctx, "alice", "wrong-password")
	_, errEmpty := h.svc.Login(ctx, "alice", "")

	for _, err := range []error{errUnknown, errWrong, errEmpty} {
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	}
	assert.Equal(t, []string{"failure", "failure", "failure"}, h.obs.logins)

	failed := h.logs.FilterMessage("login failed").All()
	require.Len(t, failed, 3)
	assert.Equal(t, "user_not_found", failed[0].ContextMap()["reason"])
	assert.Equal(t, "wrong_password", failed[1].ContextMap()["reason"])
	for _, e := range h.logs.All() {
		for k := range e.ContextMap() {
			assert.NotContains(t, []string{"password", "password_hash", "token"}, k)
		}
	}
}

func TestWhoAmI(t *testing.T) {
	h := newHarness(t)
	p := h.register(t, "alice", "alice@x.com", "pw12345678")

	profile, err := h.svc.WhoAmI(p)
	require.NoError(t, err)
	assert.Equal(t, auth.PublicProfile{ID: p.UserID, Username: "alice", Email: "alice@x.com", CreatedAt: p.CreatedAt}, profile)

	_, err = h.svc.WhoAmI(auth.Principal{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestVerify(t *testing.T) {
	h := newHarness(t)
	p := h.register(t, "alice", "alice@x.com", "pw12345678")
	tok, err := h.svc.Login(context.Background(), "alice", "pw12345678")
	require.NoError(t, err)

	status, err := h.svc.Verify(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.TokenStatus{UserID: p.UserID, Username: "alice"}, status)

	h.now = h.now.Add(31 * time.Minute)
	_, err = h.svc.Verify(context.Background(), tok.Token)
	var aerr *auth.AuthError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	_, err = h.svc.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
	assert.Equal(t, []string{"token_expired", "missing_token"}, h.obs.rejections)
}

func TestNewSessionServiceFailsWhenHasherFails(t *testing.T) {
	_, err := auth.NewSessionService(memory.NewUserRepository(), brokenHasher{}, nil)
	assert.Error(t, err)
}

type brokenHasher struct{}

func (brokenHasher) Hash([]byte) (string, error)   { return "", errors.New("boom") }
func (brokenHasher) Verify([]byte, string) bool     { return false }
