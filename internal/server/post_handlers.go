package server

import (
	"sociopedia/internal/models"
	"sociopedia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Description string `json:"description" form:"description"`
}

type likeRequest struct {
	UserID *uint `json:"userId" form:"userId"`
}

type commentRequest struct {
	Body string `json:"body" form:"body"`
}

// CreatePost handles POST /posts. The author is always the caller; the body is
// JSON or a multipart form with an optional "picture" file. Responds with the
// whole feed.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := requireCaller(c)
	if err != nil {
		return nil
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	picturePath, discardPicture, err := s.savePicture(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	posts, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      userID,
		Description: req.Description,
		PicturePath: picturePath,
	})
	if err != nil {
		discardPicture()
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(posts)
}

// GetFeed handles GET /posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.ListFeed(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /posts/:userId/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListByAuthor(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// ToggleLike handles PATCH /posts/:id/like. A userId in the body must match
// the caller; when absent the caller is used.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	caller, err := requireCaller(c)
	if err != nil {
		return nil
	}

	var req likeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if req.UserID != nil && *req.UserID != caller {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Cannot act on behalf of another user"))
	}

	post, err := s.postService.ToggleLike(c.UserContext(), postID, caller)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// AddComment handles POST /posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	caller, err := requireCaller(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.postService.AddComment(c.UserContext(), postID, caller, req.Body)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}
