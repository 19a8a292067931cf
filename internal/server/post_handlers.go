package server

import (
	"strconv"

	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postRequest is shared by create, PUT and PATCH. Author fields in the body
// are ignored; the author is always the caller.
type postRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{Title: r.Title, Content: r.Content}
}

// ListPosts handles GET /api/posts
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param author query int false "Author ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} Page
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	var filter repository.PostFilter
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || author == 0 {
			return models.RespondWithAppError(c,
				models.NewValidationError("invalid filter").WithField("author", "Enter a valid user ID."))
		}
		filter.AuthorID = uint(author)
	}
	p := parsePagination(c, defaultPageLimit)

	posts, total, err := s.postService.List(c.UserContext(), filter, p.Limit, p.Offset, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newPage(c, p, total, posts))
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Get(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.Create(c.UserContext(), callerID(c), req.input())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ReplacePost handles PUT /api/posts/:id
// @Summary Replace a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "Post"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) ReplacePost(c *fiber.Ctx) error {
	return s.updatePost(c, true)
}

// PatchPost handles PATCH /api/posts/:id
// @Summary Partially update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "Post fields"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) PatchPost(c *fiber.Ctx) error {
	return s.updatePost(c, false)
}

func (s *Server) updatePost(c *fiber.Ctx, full bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if full && (req.Title == nil || req.Content == nil) {
		return models.RespondWithAppError(c, models.NewValidationError("title and content are required"))
	}

	post, err := s.postService.Update(c.UserContext(), callerID(c), id, req.input())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), callerID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	caller := callerID(c)

	post, changed, err := s.postService.Like(c.UserContext(), caller, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if changed && post.UserID != caller {
		s.publish(c.UserContext(), post.UserID, notifications.EventPostLiked, fiber.Map{
			"post_id": post.ID,
			"user_id": caller,
			"likes":   post.Likes,
		})
	}
	return c.JSON(post)
}

// UnlikePost handles POST /api/posts/:id/unlike
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Router /posts/{id}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Unlike(c.UserContext(), callerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// GetLikeAnalytics handles GET /api/posts/analytics
// @Summary Likes per day across all posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {array} models.PostAnalytics
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/analytics [get]
func (s *Server) GetLikeAnalytics(c *fiber.Ctx) error {
	r, err := s.postService.ParseDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	days, err := s.postService.Analytics(c.UserContext(), r)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(days)
}

// GetPostAnalytics handles GET /api/posts/:id/analytics
// @Summary Likes per day for one post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {array} models.PostDailyLikes
// @Router /posts/{id}/analytics [get]
func (s *Server) GetPostAnalytics(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	r, err := s.postService.ParseDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	days, err := s.postService.PostAnalytics(c.UserContext(), id, r)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(days)
}
