package server

import (
	"time"

	"sociopedia/internal/auth"
	"sociopedia/internal/models"
	"sociopedia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// revokeUnboundedFor bounds how long the revocation of a token without exp is kept.
const revokeUnboundedFor = 30 * 24 * time.Hour

type registerRequest struct {
	FirstName  string `json:"firstName" form:"firstName"`
	LastName   string `json:"lastName" form:"lastName"`
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	Location   string `json:"location" form:"location"`
	Occupation string `json:"occupation" form:"occupation"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Register handles POST /auth/register. The body is JSON or a multipart form
// with an optional "picture" file.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	picturePath, discardPicture, err := s.savePicture(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PicturePath: picturePath,
		Location:    req.Location,
		Occupation:  req.Occupation,
	})
	if err != nil {
		discardPicture()
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	token, user, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout by revoking the presented token.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*auth.Claims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	if err := s.tokens.Revoke(c.UserContext(), claims, revokeUnboundedFor); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
