package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*Storage)(nil)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}

func TestStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	s := NewStorage(client, "limiter:")

	got, err := s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("10.0.0.1", []byte("3"), time.Minute))
	assert.True(t, mr.Exists("limiter:10.0.0.1"))
	got, err = s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)

	mr.FastForward(2 * time.Minute)
	got, err = s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Delete("a"))
	assert.False(t, mr.Exists("limiter:a"))

	require.NoError(t, mr.Set("other:keep", "x"))
	require.NoError(t, s.Set("b", []byte("1"), 0))
	require.NoError(t, s.Reset())
	assert.False(t, mr.Exists("limiter:b"))
	assert.True(t, mr.Exists("other:keep"))
	assert.NoError(t, s.Close())
}
