package server

import (
	"context"
	"time"

	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

const listTimeout = 5 * time.Second

// AddFriend handles POST /api/users/:id/add_friend
// @Summary Follow a user
// @Description Creates the edge caller -> id. Following an already followed user is not an error.
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Success 200 {object} object{status=string,message=string,created=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/add_friend [post]
func (s *Server) AddFriend(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return nil
	}
	caller := callerID(c)

	created, err := s.relationshipService.AddFriend(c.UserContext(), caller, targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	msg := "user already your friend"
	if created {
		msg = "friend added"
		s.publishFollow(c.UserContext(), caller, targetID)
	}
	return statusMessage(c, fiber.StatusOK, "success", msg, fiber.Map{"created": created})
}

// RemoveFriend handles POST /api/users/:id/remove_friend
// @Summary Unfollow a user
// @Description Deletes the edge caller -> id. The reverse edge is kept.
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or me"
// @Success 200 {object} object{status=string,message=string,removed=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/remove_friend [post]
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return nil
	}

	removed, err := s.relationshipService.RemoveFriend(c.UserContext(), callerID(c), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	msg := "user is not your friend"
	if removed {
		msg = "friend removed"
	}
	return statusMessage(c, fiber.StatusOK, "success", msg, fiber.Map{"removed": removed})
}

// ListFriends handles GET /api/users/friends
// @Summary Mutual follows of the caller
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username substring"
// @Param ordering query string false "Ordering"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} Page
// @Router /users/friends [get]
func (s *Server) ListFriends(c *fiber.Ctx) error {
	return s.listRelationships(c, models.ViewFriends)
}

// ListFollowers handles GET /api/users/followers
// @Summary Users following the caller
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Page
// @Router /users/followers [get]
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	return s.listRelationships(c, models.ViewFollowers)
}

// ListFollowed handles GET /api/users/followed
// @Summary Users the caller follows
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Page
// @Router /users/followed [get]
func (s *Server) ListFollowed(c *fiber.Ctx) error {
	return s.listRelationships(c, models.ViewFollowed)
}

func (s *Server) listRelationships(c *fiber.Ctx, view models.RelationshipView) error {
	filter, err := parseUserFilter(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, defaultPageLimit)
	viewer := callerID(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	page, err := s.relationshipService.ListRelationships(ctx, service.ListRelationshipsInput{
		ViewerID: viewer,
		View:     view,
		Filter:   filter,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newPage(c, p, page.Count, renderUserPage(viewer, page.Results)))
}

func (s *Server) publishFollow(ctx context.Context, followerID, followedID uint) {
	s.publish(ctx, followedID, notifications.EventFollowCreated, fiber.Map{
		"follower_id": followerID,
	})
}
