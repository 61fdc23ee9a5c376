package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client), mr
}

func TestAcquireLockIsExclusive(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.AcquireLock(ctx, "workflow:submit:u1", "owner-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.AcquireLock(ctx, "workflow:submit:u1", "owner-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different user's key is independent.
	ok, err = r.AcquireLock(ctx, "workflow:submit:u2", "owner-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseLockOnlyByOwner(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.AcquireLock(ctx, "workflow:submit:u1", "owner-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release is a no-op.
	require.NoError(t, r.ReleaseLock(ctx, "workflow:submit:u1", "owner-b"))
	ok, err = r.AcquireLock(ctx, "workflow:submit:u1", "owner-c", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.ReleaseLock(ctx, "workflow:submit:u1", "owner-a"))
	ok, err = r.AcquireLock(ctx, "workflow:submit:u1", "owner-c", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.AcquireLock(ctx, "workflow:submit:u1", "owner-a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = r.AcquireLock(ctx, "workflow:submit:u1", "owner-b", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNilWrapperGrantsLock(t *testing.T) {
	var r *Redis
	ok, err := r.AcquireLock(context.Background(), "k", "o", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, r.ReleaseLock(context.Background(), "k", "o"))
}
