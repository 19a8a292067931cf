package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 1, Username: "alice"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(1), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "alice", first.Username)
	assert.True(t, mr.Exists("user:1"))

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(1), &second, UserTTL, fetch(&second)))
	assert.Equal(t, "alice", second.Username)
	assert.Equal(t, 1, calls)

	InvalidateUser(ctx, 1)
	assert.False(t, mr.Exists("user:1"))
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)

	var dest cachedUser
	err := Aside(context.Background(), UserKey(2), &dest, UserTTL, func() error {
		return errors.New("not found")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("user:2"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	var dest cachedUser
	err := Aside(context.Background(), UserKey(3), &dest, UserTTL, func() error {
		dest.Username = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", dest.Username)
}

func TestAside_CorruptEntryRefetched(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("user:4", "{not json"))

	var dest cachedUser
	require.NoError(t, Aside(context.Background(), UserKey(4), &dest, UserTTL, func() error {
		dest = cachedUser{ID: 4, Username: "fresh"}
		return nil
	}))
	assert.Equal(t, "fresh", dest.Username)
}

func TestInitRedis_UnreachableLeavesNilClient(t *testing.T) {
	InitRedis("redis://127.0.0.1:1/0")
	assert.Nil(t, GetClient())

	InitRedis("://bad")
	assert.Nil(t, GetClient())
}
