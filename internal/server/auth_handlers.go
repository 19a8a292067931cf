package server

import (
	"errors"
	"log/slog"
	"time"

	"socialnet/internal/auth"
	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// ObtainToken handles POST /api/auth/token
// @Summary Obtain a JWT pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "Credentials"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token [post]
func (s *Server) ObtainToken(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	pair, err := s.tokens.Obtain(user.ID, user.Username)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	return c.JSON(pair)
}

// RefreshToken handles POST /api/auth/token/refresh
// @Summary Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	invalid := models.NewAuthenticationError("Token is invalid or expired")
	access, err := s.tokens.Refresh(req.Refresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, invalid)
	}
	claims, err := s.tokens.Verify(req.Refresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, invalid)
	}
	if revoked, _ := s.revoker.IsRevoked(c.UserContext(), claims.ID); revoked {
		return models.RespondWithError(c, fiber.StatusUnauthorized, invalid)
	}
	uid, err := claims.UserID()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, invalid)
	}
	// Deactivated accounts cannot mint new access tokens.
	if _, err := s.userService.ResolveActive(c.UserContext(), uid); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

// VerifyToken handles POST /api/auth/token/verify
// @Summary Check a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body verifyRequest true "Token"
// @Success 200 {object} object{}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/verify [post]
func (s *Server) VerifyToken(c *fiber.Ctx) error {
	var req verifyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	claims, err := s.tokens.Verify(req.Token)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthenticationError("Token is invalid or expired"))
	}
	if revoked, _ := s.revoker.IsRevoked(c.UserContext(), claims.ID); revoked {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthenticationError("Token has been revoked"))
	}
	return c.JSON(fiber.Map{})
}

// Login handles POST /api/auth/login
// @Summary Start a cookie session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "Credentials"
// @Success 200 {object} object{status=string,message=string}
// @Failure 400 {object} object{status=string,message=string}
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if models.IsCode(err, models.CodeAuthentication) {
			return statusMessage(c, fiber.StatusBadRequest, "error", "wrong email or password", nil)
		}
		return models.RespondWithAppError(c, err)
	}

	sid, err := s.sessions.Create(c.UserContext(), user.ID)
	if errors.Is(err, auth.ErrSessionsUnavailable) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(err))
	}
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return statusMessage(c, fiber.StatusOK, "success", "logged in", nil)
}

// Logout handles POST /api/auth/logout
// @Summary End the session and revoke the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{status=string,message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if sid := c.Cookies(auth.SessionCookie); sid != "" {
		if err := s.sessions.Destroy(ctx, sid); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to destroy session", slog.String("error", err.Error()))
		}
		c.ClearCookie(auth.SessionCookie)
	}
	if err := s.revoker.Revoke(ctx, callerClaims(c)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token", slog.String("error", err.Error()))
	}
	return statusMessage(c, fiber.StatusOK, "success", "logged out", nil)
}
