package task_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/bonsai/pkg/auth"
	"github.com/artem13815/bonsai/pkg/repository/memory"
	"github.com/artem13815/bonsai/pkg/task"
)

var (
	alice = auth.Principal{UserID: 1, Username: "alice"}
	bob   = auth.Principal{UserID: 2, Username: "bob"}
)

func ptr[T any](v T) *T { return &v }

func TestCreateStampsOwner(t *testing.T) {
	svc := task.NewService(memory.NewTaskRepository())
	got, err := svc.Create(context.Background(), alice, task.CreateInput{Title: "  buy milk  ", Description: "2L"})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, got.UserID)
	assert.Equal(t, "buy milk", got.Title)
	assert.False(t, got.Completed)
	assert.Positive(t, got.ID)
}

func TestCreateAcceptsCompleted(t *testing.T) {
	svc := task.NewService(memory.NewTaskRepository())
	got, err := svc.Create(context.Background(), alice, task.CreateInput{Title: "already done", Completed: true})
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestCreateValidation(t *testing.T) {
	svc := task.NewService(memory.NewTaskRepository())
	_, err := svc.Create(context.Background(), alice, task.CreateInput{Title: "   "})
	assert.ErrorIs(t, err, auth.ErrValidation)

	_, err = svc.Create(context.Background(), alice, task.CreateInput{Title: strings.Repeat("a", 201)})
	assert.ErrorIs(t, err, auth.ErrValidation)

	_, err = svc.Create(context.Background(), auth.Principal{}, task.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestForeignTaskLooksMissing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTaskRepository()
	svc := task.NewService(repo)
	mine, err := svc.Create(ctx, alice, task.CreateInput{Title: "secret plan"})
	require.NoError(t, err)

	_, errMissing := svc.Get(ctx, bob, 9999)
	require.ErrorIs(t, errMissing, auth.ErrNotFound)

	_, err = svc.Get(ctx, bob, mine.ID)
	assert.Equal(t, errMissing, err)
	_, err = svc.Update(ctx, bob, mine.ID, task.UpdateInput{Title: ptr("pwned")})
	assert.Equal(t, errMissing, err)
	_, err = svc.Toggle(ctx, bob, mine.ID)
	assert.Equal(t, errMissing, err)
	assert.Equal(t, errMissing, svc.Delete(ctx, bob, mine.ID))

	still, err := svc.Get(ctx, alice, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret plan", still.Title)
	assert.False(t, still.Completed)

	list, err := svc.List(ctx, bob, task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateToggleDelete(t *testing.T) {
	ctx := context.Background()
	svc := task.NewService(memory.NewTaskRepository())
	created, err := svc.Create(ctx, alice, task.CreateInput{Title: "a"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice, created.ID, task.UpdateInput{Description: ptr("details"), Completed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "a", updated.Title)
	assert.Equal(t, "details", updated.Description)
	assert.True(t, updated.Completed)

	_, err = svc.Update(ctx, alice, created.ID, task.UpdateInput{Title: ptr("")})
	assert.ErrorIs(t, err, auth.ErrValidation)

	toggled, err := svc.Toggle(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	require.NoError(t, svc.Delete(ctx, alice, created.ID))
	_, err = svc.Get(ctx, alice, created.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	ctx := context.Background()
	svc := task.NewService(memory.NewTaskRepository())
	created, err := svc.Create(ctx, alice, task.CreateInput{Title: "flip"})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Toggle(ctx, alice, created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed, "an even number of toggles leaves the task open")
}

func TestListFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	svc := task.NewService(memory.NewTaskRepository())
	for _, title := range []string{"one", "two", "three", "four"} {
		_, err := svc.Create(ctx, alice, task.CreateInput{Title: title})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, task.CreateInput{Title: "bob's"})
	require.NoError(t, err)

	all, err := svc.List(ctx, alice, task.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "four", all[0].Title)

	_, err = svc.Toggle(ctx, alice, all[1].ID)
	require.NoError(t, err)

	done, err := svc.List(ctx, alice, task.Filter{Completed: ptr(true)})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "three", done[0].Title)

	page, err := svc.List(ctx, alice, task.Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Title)
	assert.Equal(t, "two", page[1].Title)

	_, err = svc.List(ctx, auth.Principal{}, task.Filter{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
