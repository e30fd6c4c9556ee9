package blob

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseURL returns the connection string for integration tests,
// skipping when none is configured.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("MVV_TEST_DATABASE_URL")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("no test database configured; set MVV_TEST_DATABASE_URL or DATABASE_URL")
	}
	return url
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, testDatabaseURL(t))
	require.NoError(t, err)
	defer store.Close()

	key := "async_1700000000000_mvv_pgtest"
	t.Cleanup(func() {
		_, _ = store.Delete(context.Background(), key)
	})

	require.NoError(t, store.Set(ctx, key, []byte(`{"v":1}`)))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	// Upsert replaces the prior value.
	require.NoError(t, store.Set(ctx, key, []byte(`{"v":2}`)))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	// A key differing only at the underscore positions must not match;
	// the prefix is literal, not a pattern.
	decoy := "asyncX1700000000000Xmvv_decoy"
	require.NoError(t, store.Set(ctx, decoy, []byte(`{}`)))
	t.Cleanup(func() {
		_, _ = store.Delete(context.Background(), decoy)
	})

	keys, err := store.List(ctx, "async_1700000000000_")
	require.NoError(t, err)
	assert.Contains(t, keys, key)
	assert.NotContains(t, keys, decoy)

	existed, err := store.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
