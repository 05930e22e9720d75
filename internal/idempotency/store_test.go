package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour, zerolog.Nop()), mr
}

func TestRedisStore_ReserveCompleteReplay(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, reserved, err := store.Reserve(ctx, "checkout-1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	// Second submit while the first is still running.
	id, reserved, err = store.Reserve(ctx, "checkout-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, id)

	require.NoError(t, store.Complete(ctx, "checkout-1", "order-42"))

	id, reserved, err = store.Reserve(ctx, "checkout-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-42", id)
}

func TestRedisStore_Release(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "checkout-2")
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, store.Release(ctx, "checkout-2"))

	_, reserved, err = store.Reserve(ctx, "checkout-2")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisStore_KeyExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "checkout-3")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"checkout-3"))

	mr.FastForward(2 * time.Hour)

	_, reserved, err := store.Reserve(ctx, "checkout-3")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisStore_PendingKeyExpiresEarly(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "checkout-5")
	require.NoError(t, err)
	require.True(t, reserved)
	assert.Equal(t, pendingTTL, mr.TTL(keyPrefix+"checkout-5"))

	// Complete never ran, so a retry gets through once the marker lapses.
	mr.FastForward(pendingTTL + time.Second)

	_, reserved, err = store.Reserve(ctx, "checkout-5")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisStore_CompleteExtendsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "checkout-6")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "checkout-6", "order-6"))

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"checkout-6"))

	mr.FastForward(pendingTTL + time.Second)

	id, reserved, err := store.Reserve(ctx, "checkout-6")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-6", id)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, reserved, err := store.Reserve(context.Background(), "checkout-4")
	require.Error(t, err)
	assert.False(t, reserved)
	assert.Contains(t, err.Error(), "failed to reserve idempotency key")
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()

	_, reserved, err := s.Reserve(ctx, "anything")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.NoError(t, s.Complete(ctx, "anything", "x"))
	assert.NoError(t, s.Release(ctx, "anything"))
}
