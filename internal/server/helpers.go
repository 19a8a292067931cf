package server

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote the response.
// Handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

// meAlias resolves to the caller in user routes.
const meAlias = "me"

const (
	defaultPageLimit   = 20
	maxPaginationLimit = 100
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// Page is the list envelope. Next and Previous are relative URLs.
type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func newPage(c *fiber.Ctx, p Pagination, count int64, results any) Page {
	page := Page{Count: count, Results: results}
	if int64(p.Offset+p.Limit) < count {
		next := pageURL(c, p.Limit, p.Offset+p.Limit)
		page.Next = &next
	}
	if p.Offset > 0 {
		prev := pageURL(c, p.Limit, max(p.Offset-p.Limit, 0))
		page.Previous = &prev
	}
	return page
}

func pageURL(c *fiber.Ctx, limit, offset int) string {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	if q == nil {
		q = url.Values{}
	}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	return c.Path() + "?" + q.Encode()
}

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseUserID is parseID for user routes, where "me" names the caller.
func parseUserID(c *fiber.Ctx) (uint, error) {
	if strings.EqualFold(c.Params("id"), meAlias) {
		id := callerID(c)
		if id == 0 {
			_ = models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewAuthenticationError("Authentication credentials were not provided."))
			return 0, errResponseWritten
		}
		return id, nil
	}
	return parseID(c, "id")
}

// parseUserFilter reads search, ordering and the joined date bounds.
func parseUserFilter(c *fiber.Ctx) (repository.UserFilter, error) {
	f := repository.UserFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Ordering: strings.TrimSpace(c.Query("ordering")),
	}
	verr := models.NewValidationError("invalid filter")
	if f.Ordering != "" && !repository.ValidUserOrdering(f.Ordering) {
		verr.WithField("ordering", "Select a valid choice. "+f.Ordering+" is not one of the available choices.")
	}
	for _, b := range []struct {
		param string
		dest  **time.Time
	}{
		{"joined_after", &f.JoinedAfter},
		{"joined_before", &f.JoinedBefore},
	} {
		raw := strings.TrimSpace(c.Query(b.param))
		if raw == "" {
			continue
		}
		t, err := parseDateTime(raw)
		if err != nil {
			verr.WithField(b.param, "Enter a valid date/time.")
			continue
		}
		*b.dest = &t
	}
	if len(verr.Fields) > 0 {
		_ = models.RespondWithAppError(c, verr)
		return f, errResponseWritten
	}
	return f, nil
}

func parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

// parseBody decodes the JSON body into dest and validates it. On failure it
// writes a 400 response and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validation.Struct(dest); err != nil {
		_ = models.RespondWithAppError(c, err)
		return errResponseWritten
	}
	return nil
}

// statusMessage writes the {status, message} outcome body used by action endpoints.
func statusMessage(c *fiber.Ctx, code int, status, message string, extra fiber.Map) error {
	body := fiber.Map{"status": status, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(code).JSON(body)
}
