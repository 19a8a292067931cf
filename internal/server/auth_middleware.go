package server

import (
	"errors"
	"log/slog"
	"strings"

	"socialnet/internal/auth"
	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userID"
	localClaims = "claims"
)

// AuthRequired rejects requests without a valid bearer token or session.
func (s *Server) AuthRequired() fiber.Handler {
	return s.authMiddleware(true)
}

// OptionalAuth identifies the caller when credentials are present. Invalid
// credentials are still rejected.
func (s *Server) OptionalAuth() fiber.Handler {
	return s.authMiddleware(false)
}

func (s *Server) authMiddleware(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.identify(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if userID == 0 {
			if required {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewAuthenticationError("Authentication credentials were not provided."))
			}
			return c.Next()
		}

		if _, err := s.userService.ResolveActive(c.UserContext(), userID); err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals(localUserID, userID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))

		if err := s.userService.TouchRequest(c.UserContext(), userID); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to record last request",
				slog.String("error", err.Error()))
		}
		return c.Next()
	}
}

// identify returns the user behind the request credentials, or 0 when none
// were sent. A bearer token takes precedence over the session cookie.
func (s *Server) identify(c *fiber.Ctx) (uint, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return 0, models.NewAuthenticationError("Invalid authorization header")
		}
		claims, err := s.tokens.ParseAccess(token)
		if err != nil {
			return 0, models.NewAuthenticationError("Invalid or expired token")
		}
		revoked, err := s.revoker.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "revocation check failed",
				slog.String("error", err.Error()))
		}
		if revoked {
			return 0, models.NewAuthenticationError("Token has been revoked")
		}
		userID, err := claims.UserID()
		if err != nil {
			return 0, models.NewAuthenticationError("Invalid token subject")
		}
		c.Locals(localClaims, claims)
		return userID, nil
	}

	sid := c.Cookies(auth.SessionCookie)
	if sid == "" {
		return 0, nil
	}
	userID, err := s.sessions.Get(c.UserContext(), sid)
	switch {
	case err == nil:
		return userID, nil
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionsUnavailable):
		// Stale cookies are treated as anonymous.
		return 0, nil
	default:
		return 0, models.NewInternalError(err)
	}
}

// AdminRequired rejects non-admin callers with 403. It must follow AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.userRepo.GetByID(c.UserContext(), callerID(c))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewPermissionDeniedError("Admin access required"))
		}
		return c.Next()
	}
}

// callerID returns the authenticated user ID, or 0 for anonymous requests.
func callerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func callerClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	return claims
}
