package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := userFromChannel("notifications:user:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = userFromChannel("notifications:user:abc")
	assert.False(t, ok)
	_, ok = userFromChannel("chat:conv:1")
	assert.False(t, ok)
}

func TestNotifier_WithoutRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Publish(context.Background(), 1, EventFollowCreated, nil))
	assert.NoError(t, n.Subscribe(context.Background(), func(uint, []byte) {
		t.Fatal("no messages expected")
	}))
}

func TestHub_DeliversPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	bob, err := hub.Register(2, nil)
	require.NoError(t, err)
	other, err := hub.Register(3, nil)
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, 2, EventFollowCreated, map[string]any{"user_id": 1, "username": "alice"}))

	select {
	case raw := <-bob.send:
		var ev struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, EventFollowCreated, ev.Type)
		assert.Equal(t, "alice", ev.Payload["username"])
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	assert.Never(t, func() bool { return len(other.send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestHub_ConnectionLimits(t *testing.T) {
	hub := NewHub()
	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register(7, nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	_, err := hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)
	assert.Equal(t, maxConnsPerUser, hub.Connections(7))

	hub.Unregister(clients[0])
	hub.Unregister(clients[0])
	assert.Equal(t, maxConnsPerUser-1, hub.Connections(7))

	_, ok := <-clients[0].send
	assert.False(t, ok, "unregister closes the queue")
	clients[0].TrySend([]byte("late"))
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		hub.Deliver(1, []byte("x"))
	}
	assert.Len(t, c.send, sendBuffer)
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Connections(1))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}
