package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKV_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, kv.Del(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, PendingAlertsKey, "[]", PendingAlertsTTL))
	mr.FastForward(PendingAlertsTTL + time.Second)

	_, err := kv.Get(ctx, PendingAlertsKey)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRealtimeKey(t *testing.T) {
	assert.Equal(t, "heartguard:patient:carol:realtime", RealtimeKey("carol"))
}
