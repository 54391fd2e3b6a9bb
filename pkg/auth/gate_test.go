package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/bonsai/pkg/auth"
)

type doc struct {
	id    int64
	owner int64
}

func (d doc) OwnerID() int64 { return d.owner }

func TestExtractBearer(t *testing.T) {
	tok, err := auth.ExtractBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = auth.ExtractBearer("bearer   abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc.def.ghi", "Token abc"} {
		_, err := auth.ExtractBearer(h)
		assert.ErrorIs(t, err, auth.ErrMissingToken, "header %q", h)
	}
}

func TestResolveRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.register(t, "alice", "alice@x.com", "pw12345678")
	tok, err := h.svc.Login(ctx, "alice", "pw12345678")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		reason error
	}{
		{"missing", "", auth.ErrMissingToken},
		{"wrong scheme", "Basic " + tok.Token, auth.ErrMissingToken},
		{"garbage", "Bearer nodots", auth.ErrTokenMalformed},
		{"tampered", "Bearer " + tok.Token + "x", auth.ErrTokenSignatureInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.resolver.Resolve(ctx, tc.header)
			assert.ErrorIs(t, err, auth.ErrUnauthenticated)
			assert.ErrorIs(t, err, tc.reason)
		})
	}

	h.now = h.now.Add(30 * time.Minute)
	_, err = h.resolver.Resolve(ctx, "Bearer "+tok.Token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	h.now = h.now.Add(-30 * time.Minute)

	require.NoError(t, h.users.Delete(ctx, p.UserID))
	_, err = h.resolver.Resolve(ctx, "Bearer "+tok.Token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	rejected := h.logs.FilterMessage("token rejected").All()
	require.NotEmpty(t, rejected)
	assert.Equal(t, "user_not_found", rejected[len(rejected)-1].ContextMap()["reason"])
}

type stubUsers struct {
	user auth.User
	err  error
}

func (s stubUsers) FindByUsername(context.Context, string) (auth.User, error) { return s.user, s.err }
func (s stubUsers) FindByID(context.Context, int64) (auth.User, error)        { return s.user, s.err }
func (s stubUsers) Insert(context.Context, string, string, string) (auth.User, error) {
	return auth.User{}, errors.New("not supported")
}

func TestResolveSubjectMismatchIsUserNotFound(t *testing.T) {
	h := newHarness(t)
	tok, err := h.codec.Issue("alice", 1, h.now)
	require.NoError(t, err)

	r := auth.NewResolver(h.codec, stubUsers{user: auth.User{Principal: auth.Principal{UserID: 1, Username: "eve"}}},
		auth.WithClock(func() time.Time { return h.now }))
	_, err = r.Resolve(context.Background(), "Bearer "+tok.Token)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestResolveStorageFailureFailsClosed(t *testing.T) {
	h := newHarness(t)
	tok, err := h.codec.Issue("alice", 1, h.now)
	require.NoError(t, err)

	boom := errors.New("connection refused")
	r := auth.NewResolver(h.codec, stubUsers{err: boom}, auth.WithClock(func() time.Time { return h.now }))
	p, err := r.Resolve(context.Background(), "Bearer "+tok.Token)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrUnauthenticated)
	assert.True(t, p.IsZero())
}

func TestGateRequireAuth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice", "alice@x.com", "pw12345678")
	tok, err := h.svc.Login(ctx, "alice", "pw12345678")
	require.NoError(t, err)

	p, err := h.gate.RequireAuth(ctx, "Bearer "+tok.Token)
	require.NoError(t, err)
	assert.Equal(t, alice, p)

	_, err = h.gate.RequireAuth(ctx, "")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestEnforceOwnership(t *testing.T) {
	alice := auth.Principal{UserID: 1, Username: "alice"}

	assert.NoError(t, auth.EnforceOwnership(alice, 1))
	assert.ErrorIs(t, auth.EnforceOwnership(alice, 2), auth.ErrNotFound)
	assert.ErrorIs(t, auth.EnforceOwnership(auth.Principal{}, 0), auth.ErrUnauthenticated)
	assert.NotErrorIs(t, auth.EnforceOwnership(alice, 2), auth.ErrUnauthenticated)
}

func TestAuthorize(t *testing.T) {
	alice := auth.Principal{UserID: 1}

	got, err := auth.Authorize(alice, doc{id: 10, owner: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.id)

	_, errForeign := auth.Authorize(alice, doc{id: 11, owner: 2}, nil)
	_, errMissing := auth.Authorize(alice, doc{}, auth.ErrNotFound)
	assert.Equal(t, errMissing, errForeign)
	assert.ErrorIs(t, errForeign, auth.ErrNotFound)

	boom := errors.New("db down")
	_, err = auth.Authorize(alice, doc{}, boom)
	assert.ErrorIs(t, err, boom)

	_, err = auth.Authorize(auth.Principal{}, doc{id: 10, owner: 0}, nil)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestFilterOwnedAndStampOwner(t *testing.T) {
	alice := auth.Principal{UserID: 1}
	items := []doc{{id: 1, owner: 1}, {id: 2, owner: 2}, {id: 3, owner: 1}}

	got := auth.FilterOwned(alice, items)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].id)
	assert.Equal(t, int64(3), got[1].id)
	assert.Equal(t, int64(1), auth.StampOwner(alice))
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "token_expired", auth.RejectionReason(&auth.AuthError{Reason: auth.ErrTokenExpired}))
	assert.Equal(t, "missing_token", auth.RejectionReason(auth.ErrMissingToken))
	assert.Equal(t, "unknown", auth.RejectionReason(errors.New("x")))
}
