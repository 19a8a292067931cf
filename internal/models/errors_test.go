package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"invalid operation", NewInvalidOperationError("self"), http.StatusBadRequest},
		{"authentication", NewAuthenticationError("nope"), http.StatusUnauthorized},
		{"permission", NewPermissionDeniedError("no"), http.StatusForbidden},
		{"not found", NewNotFoundError("User", 7), http.StatusNotFound},
		{"conflict", NewConflictError("dup"), http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("Post", 1)), http.StatusNotFound},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithError_FieldDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadRequest,
			NewAuthenticationError("wrong password").WithField("old_password", "Wrong password."))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Code    string              `json:"code"`
		Details map[string][]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, CodeAuthentication, out.Code)
	assert.Equal(t, []string{"Wrong password."}, out.Details["old_password"])
}

func TestRespondWithError_HidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewInternalError(errors.New("dial tcp: refused")))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "refused")
}

func TestRelationshipViewIncludes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		follower, followed bool
		friends, followers bool
		followedView       bool
	}{
		{false, false, false, false, false},
		{true, false, false, true, false},
		{false, true, false, false, true},
		{true, true, true, true, true},
	}
	for _, c := range cases {
		rel := NewRelationship(c.follower, c.followed)
		assert.Equal(t, c.follower && c.followed, rel.IsFriends)
		assert.Equal(t, c.friends, ViewFriends.Includes(rel))
		assert.Equal(t, c.followers, ViewFollowers.Includes(rel))
		assert.Equal(t, c.followedView, ViewFollowed.Includes(rel))
	}
	assert.False(t, RelationshipView("blocked").Includes(NewRelationship(true, true)))
	assert.False(t, RelationshipView("blocked").Valid())
}
