package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionStoreTest(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis start")
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisSessionStore(rdb, time.Second), mr
}

func TestSessionStorePutActiveLastWriterWins(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.PutActive(ctx, "alice", "token-1", time.Minute))
	require.NoError(t, store.PutActive(ctx, "alice", "token-2", time.Minute))

	got, ok, err := store.GetActive(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-2", got)
	assert.Equal(t, time.Minute, mr.TTL("access:alice"))
}

func TestSessionStoreActiveExpires(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.PutActive(ctx, "alice", "token-1", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, ok, err := store.GetActive(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStorePutActiveRejectsNonPositiveTTL(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	assert.Error(t, store.PutActive(context.Background(), "alice", "token-1", 0))
}

func TestSessionStoreClearActiveComparesToken(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.PutActive(ctx, "alice", "token-2", time.Minute))

	cleared, err := store.ClearActive(ctx, "alice", "token-1")
	require.NoError(t, err)
	assert.False(t, cleared, "a superseded token must not clear the newer session")

	got, ok, err := store.GetActive(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-2", got)

	cleared, err = store.ClearActive(ctx, "alice", "token-2")
	require.NoError(t, err)
	assert.True(t, cleared)

	_, ok, err = store.GetActive(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStoreBlacklistSelfPrunes(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.Blacklist(ctx, "token-1", 30*time.Second))

	listed, err := store.IsBlacklisted(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = store.IsBlacklisted(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, listed)

	mr.FastForward(31 * time.Second)
	listed, err = store.IsBlacklisted(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, listed)
	assert.Empty(t, mr.Keys())
}

func TestSessionStoreBlacklistOnce(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	first, err := store.BlacklistOnce(ctx, "refresh-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.BlacklistOnce(ctx, "refresh-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	listed, err := store.IsBlacklisted(ctx, "refresh-1")
	require.NoError(t, err)
	assert.True(t, listed)

	dead, err := store.BlacklistOnce(ctx, "refresh-2", 0)
	require.NoError(t, err)
	assert.False(t, dead)
}

func TestSessionStoreBlacklistSkipsDeadTokens(t *testing.T) {
	store, mr := newSessionStoreTest(t)

	require.NoError(t, store.Blacklist(context.Background(), "token-1", -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestSessionStoreBlacklistKeyIsHashed(t *testing.T) {
	store, mr := newSessionStoreTest(t)

	require.NoError(t, store.Blacklist(context.Background(), "secret-token", time.Minute))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "secret-token")
	assert.Equal(t, blacklistKey("secret-token"), keys[0])
}

func TestSessionStoreFailsClosed(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()
	require.NoError(t, store.PutActive(ctx, "alice", "token-1", time.Minute))

	require.NoError(t, store.Ping(ctx))
	mr.Close()
	assert.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)

	listed, err := store.IsBlacklisted(ctx, "token-1")
	assert.True(t, listed)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	got, ok, err := store.GetActive(ctx, "alice")
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, store.PutActive(ctx, "alice", "token-2", time.Minute), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Blacklist(ctx, "token-1", time.Minute), ErrStoreUnavailable)
	_, err = store.BlacklistOnce(ctx, "token-1", time.Minute)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.ClearActive(ctx, "alice", "token-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
