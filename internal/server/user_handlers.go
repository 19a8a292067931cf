package server

import (
	"socialnet/internal/models"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,account_email"`
	Password  string `json:"password" validate:"required,strongpwd"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio" validate:"max=2000"`
}

// profileRequest is shared by PUT and PATCH. PUT additionally requires
// username and email.
type profileRequest struct {
	Username  *string `json:"username" validate:"omitempty,username"`
	Email     *string `json:"email" validate:"omitempty,account_email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpwd"`
}

// Register handles POST /api/users
// @Summary Register
// @Description Create an account. Authenticated callers are rejected.
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerRequest true "Signup request"
// @Success 201 {object} userDetailView
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	if callerID(c) != 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidOperationError("you already signed up"))
	}

	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(renderUser(ShapeDetail, user, nil, userDetails{}))
}

// ListUsers handles GET /api/users
// @Summary List active users
// @Tags users
// @Produce json
// @Param search query string false "Username substring"
// @Param ordering query string false "username, -username, date_joined or -date_joined"
// @Param joined_after query string false "RFC3339 or YYYY-MM-DD"
// @Param joined_before query string false "RFC3339 or YYYY-MM-DD"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} Page
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	filter, err := parseUserFilter(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, defaultPageLimit)
	viewer := callerID(c)

	page, err := s.relationshipService.ListUsers(c.UserContext(), viewer, filter, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newPage(c, p, page.Count, renderUserPage(viewer, page.Results)))
}

// GetUser handles GET /api/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID or me"
// @Success 200 {object} userDetailView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	user, err := s.userService.Get(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	followers, following, err := s.relationshipService.Counts(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	var rel *models.Relationship
	if viewer := callerID(c); viewer != 0 {
		r, err := s.relationshipService.Classify(ctx, viewer, id)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		rel = &r
	}
	return c.JSON(renderUser(ShapeDetail, user, rel, userDetails{Followers: followers, Following: following}))
}

// ReplaceUser handles PUT /api/users/:id
// @Summary Update a profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Param request body profileRequest true "Profile"
// @Success 200 {object} userDetailView
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) ReplaceUser(c *fiber.Ctx) error {
	return s.updateUser(c, true)
}

// PatchUser handles PATCH /api/users/:id
// @Summary Partially update a profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Param request body profileRequest true "Profile fields"
// @Success 200 {object} userDetailView
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) PatchUser(c *fiber.Ctx) error {
	return s.updateUser(c, false)
}

func (s *Server) updateUser(c *fiber.Ctx, full bool) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}

	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if full {
		verr := models.NewValidationError("invalid request")
		if req.Username == nil {
			verr.WithField("username", "This field is required.")
		}
		if req.Email == nil {
			verr.WithField("email", "This field is required.")
		}
		if len(verr.Fields) > 0 {
			return models.RespondWithAppError(c, verr)
		}
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), callerID(c), id, service.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	followers, following, err := s.relationshipService.Counts(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(renderUser(ShapeDetail, user, nil, userDetails{Followers: followers, Following: following}))
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Deactivate an account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Success 200 {object} object{status=string,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	if err := s.userService.Deactivate(c.UserContext(), callerID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return statusMessage(c, fiber.StatusOK, "success", "Account is not active now", nil)
}

// ChangePassword handles POST /api/users/:id/change_password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Param request body changePasswordRequest true "Passwords"
// @Success 200 {object} object{status=string,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/change_password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}

	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	err = s.userService.ChangePassword(c.UserContext(), callerID(c), id, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		return statusMessage(c, fiber.StatusOK, "success", "Password updated successfully", nil)
	case models.IsCode(err, models.CodeAuthentication):
		// Wrong old password.
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	default:
		return models.RespondWithAppError(c, err)
	}
}

// GetActivity handles GET /api/users/:id/activity
// @Summary Last login and last request times
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Success 200 {object} userActivityView
// @Router /users/{id}/activity [get]
func (s *Server) GetActivity(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return nil
	}
	user, err := s.userService.Activity(c.UserContext(), callerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(renderUser(ShapeActivity, user, nil, userDetails{}))
}
