package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 20, Offset: 0}},
		{"?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"?limit=0&offset=-3", Pagination{Limit: 20, Offset: 0}},
		{"?limit=1000", Pagination{Limit: maxPaginationLimit, Offset: 0}},
		{"?limit=abc", Pagination{Limit: 20, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, defaultPageLimit)
				return nil
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPage_Links(t *testing.T) {
	app := fiber.New()
	var page Page
	app.Get("/items", func(c *fiber.Ctx) error {
		page = newPage(c, parsePagination(c, 10), 25, []int{})
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items?search=a&limit=10&offset=10", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "/items?limit=10&offset=20&search=a", *page.Next)
	assert.Equal(t, "/items?limit=10&search=a", *page.Previous)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/items?offset=20", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Nil(t, page.Next)
}

func TestParseUserFilter(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		f, err := parseUserFilter(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{
			"search":   f.Search,
			"ordering": f.Ordering,
			"after":    f.JoinedAfter,
			"before":   f.JoinedBefore,
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/?search=al&ordering=-date_joined&joined_after=2024-01-02&joined_before=2024-02-01T10:00:00Z", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/?ordering=email", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseDateTime(t *testing.T) {
	d, err := parseDateTime("2024-01-02")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Equal(d))

	ts, err := parseDateTime("2024-01-02T03:04:05+02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC).Equal(ts))

	_, err = parseDateTime("02/01/2024")
	assert.Error(t, err)
}

func TestParseUserID_Me(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") != "" {
			c.Locals(localUserID, uint(7))
		}
		return c.Next()
	})
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("X-User", "1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/users/0", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.register(t, "alice"))

	res := env.do(t, http.MethodGet, "/api/ws", nil, withToken(token))
	assert.Equal(t, http.StatusUpgradeRequired, res.Status)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/ws", nil).Status)
}
