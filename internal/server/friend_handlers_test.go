package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"socialnet/internal/featureflags"
	"socialnet/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRemoveFriend(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	aliceToken := env.token(t, alice)
	addBob := fmt.Sprintf("/api/users/%d/add_friend", bob.ID)
	removeBob := fmt.Sprintf("/api/users/%d/remove_friend", bob.ID)

	res := env.do(t, http.MethodPost, addBob, nil, withToken(aliceToken))
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, "success", res.Body["status"])
	assert.Equal(t, "friend added", res.Body["message"])
	assert.Equal(t, true, res.Body["created"])

	res = env.do(t, http.MethodPost, addBob, nil, withToken(aliceToken))
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "user already your friend", res.Body["message"])
	assert.Equal(t, false, res.Body["created"])

	res = env.do(t, http.MethodPost, removeBob, nil, withToken(aliceToken))
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "friend removed", res.Body["message"])
	assert.Equal(t, true, res.Body["removed"])

	res = env.do(t, http.MethodPost, removeBob, nil, withToken(aliceToken))
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "user is not your friend", res.Body["message"])
	assert.Equal(t, false, res.Body["removed"])
}

func TestAddFriend_Errors(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	token := env.token(t, alice)

	tests := []struct {
		name   string
		path   string
		opts   []requestOption
		status int
	}{
		{"self via me", "/api/users/me/add_friend", []requestOption{withToken(token)}, http.StatusBadRequest},
		{"self via id", fmt.Sprintf("/api/users/%d/add_friend", alice.ID), []requestOption{withToken(token)}, http.StatusBadRequest},
		{"remove self", "/api/users/me/remove_friend", []requestOption{withToken(token)}, http.StatusBadRequest},
		{"unknown target", "/api/users/999/add_friend", []requestOption{withToken(token)}, http.StatusNotFound},
		{"invalid id", "/api/users/abc/add_friend", []requestOption{withToken(token)}, http.StatusBadRequest},
		{"anonymous", "/api/users/1/add_friend", nil, http.StatusUnauthorized},
		{"garbage token", "/api/users/1/add_friend", []requestOption{withToken("nope")}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(t, http.MethodPost, tt.path, nil, tt.opts...)
			assert.Equal(t, tt.status, res.Status, string(res.Raw))
			assert.Equal(t, "error", res.Body["status"])
		})
	}
}

func TestRelationshipViews_AliceAndBob(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.register(t, "carol")
	aliceToken, bobToken := env.token(t, alice), env.token(t, bob)

	res := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/add_friend", bob.ID), nil, withToken(aliceToken))
	require.Equal(t, http.StatusOK, res.Status)

	// Alice follows Bob only.
	assert.Equal(t, []string{"bob"}, env.do(t, http.MethodGet, "/api/users/followed", nil, withToken(aliceToken)).usernames(t))
	assert.Empty(t, env.do(t, http.MethodGet, "/api/users/friends", nil, withToken(aliceToken)).usernames(t))

	followers := env.do(t, http.MethodGet, "/api/users/followers", nil, withToken(bobToken))
	require.Equal(t, http.StatusOK, followers.Status)
	assert.Equal(t, float64(1), followers.Body["count"])
	entry := followers.results(t)[0]
	assert.Equal(t, "alice", entry["username"])
	assert.Equal(t, true, entry["is_follower"])
	assert.Equal(t, false, entry["is_followed"])
	assert.Equal(t, false, entry["is_friends"])

	// Bob follows back: they are friends.
	res = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/add_friend", alice.ID), nil, withToken(bobToken))
	require.Equal(t, http.StatusOK, res.Status)
	friends := env.do(t, http.MethodGet, "/api/users/friends", nil, withToken(aliceToken))
	assert.Equal(t, []string{"bob"}, friends.usernames(t))
	assert.Equal(t, true, friends.results(t)[0]["is_friends"])

	// Removing either edge breaks the friendship but keeps the other edge.
	res = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/remove_friend", alice.ID), nil, withToken(bobToken))
	require.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, env.do(t, http.MethodGet, "/api/users/friends", nil, withToken(aliceToken)).usernames(t))
	assert.Equal(t, []string{"alice"}, env.do(t, http.MethodGet, "/api/users/followers", nil, withToken(bobToken)).usernames(t))
}

func TestRelationshipViews_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/users/friends", "/api/users/followers", "/api/users/followed"} {
		res := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Status, path)
	}
}

func TestRelationshipViews_PagingAndFilters(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.register(t, "viewer")
	token := env.token(t, viewer)
	for _, name := range []string{"anna", "boris", "clara", "dmitri", "elena"} {
		u := env.register(t, name)
		res := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/add_friend", u.ID), nil, withToken(token))
		require.Equal(t, http.StatusOK, res.Status)
	}
	env.register(t, "zed")

	page := env.do(t, http.MethodGet, "/api/users/followed?limit=2&offset=2", nil, withToken(token))
	require.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, float64(5), page.Body["count"])
	assert.Equal(t, []string{"clara", "dmitri"}, page.usernames(t))
	assert.Equal(t, "/api/users/followed?limit=2&offset=4", page.Body["next"])
	assert.Equal(t, "/api/users/followed?limit=2", page.Body["previous"])

	desc := env.do(t, http.MethodGet, "/api/users/followed?ordering=-username&limit=1", nil, withToken(token))
	assert.Equal(t, []string{"elena"}, desc.usernames(t))

	search := env.do(t, http.MethodGet, "/api/users/followed?search=RA", nil, withToken(token))
	assert.Equal(t, []string{"clara"}, search.usernames(t))

	bad := env.do(t, http.MethodGet, "/api/users/followed?ordering=password", nil, withToken(token))
	assert.Equal(t, http.StatusBadRequest, bad.Status)
	assert.Contains(t, bad.Body["details"], "ordering")

	badDate := env.do(t, http.MethodGet, "/api/users/followed?joined_after=yesterday", nil, withToken(token))
	assert.Equal(t, http.StatusBadRequest, badDate.Status)
}

func TestRelationshipViews_LegacyPaging(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags = featureflags.LegacyRelationshipPaging + "=on"
	env := newTestEnvWithConfig(t, cfg)

	viewer := env.register(t, "viewer")
	token := env.token(t, viewer)
	env.register(t, "aaron")
	target := env.register(t, "zoe")
	res := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/add_friend", target.ID), nil, withToken(token))
	require.Equal(t, http.StatusOK, res.Status)

	// A page of all active users is classified and then filtered, so the
	// first page may come back short and count covers every active user.
	page := env.do(t, http.MethodGet, "/api/users/followed?limit=1", nil, withToken(token))
	require.Equal(t, http.StatusOK, page.Status)
	assert.Empty(t, page.usernames(t))
	assert.Equal(t, float64(3), page.Body["count"])
}

func TestAddFriend_PublishesEvent(t *testing.T) {
	env := newTestEnvWithConfig(t, testConfig())
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub := env.rdb.Subscribe(ctx, notifications.UserChannel(bob.ID))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	res := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/add_friend", bob.ID), nil, withToken(env.token(t, alice)))
	require.Equal(t, http.StatusOK, res.Status)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, notifications.EventFollowCreated)
	assert.Contains(t, msg.Payload, fmt.Sprintf(`"follower_id":%d`, alice.ID))
}

