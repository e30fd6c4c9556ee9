package blob

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStoreFromClient(client, time.Hour), mr
}

func TestRedisStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	value, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
}

func TestRedisStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	existed, err := store.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestRedisStoreList(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Set(ctx, "async_1_mvv_a", []byte("r")))
	require.NoError(t, store.Set(ctx, "async_2_ideas_b", []byte("r")))
	require.NoError(t, store.Set(ctx, "unrelated", []byte("x")))

	keys, err := store.List(ctx, "async_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"async_1_mvv_a", "async_2_ideas_b"}, keys)
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Set(ctx, "k1", []byte("v1")))

	// Past the TTL the blob is gone.
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}
