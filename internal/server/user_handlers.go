package server

import (
	"sociopedia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	FirstName  *string `json:"firstName" form:"firstName"`
	LastName   *string `json:"lastName" form:"lastName"`
	Location   *string `json:"location" form:"location"`
	Occupation *string `json:"occupation" form:"occupation"`
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PATCH /users/:id. Only the caller's own profile can change.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := requireSelf(c, id); err != nil {
		return nil
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := service.UpdateProfileInput{
		UserID:     id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Location:   req.Location,
		Occupation: req.Occupation,
	}

	picturePath, discardPicture, err := s.savePicture(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if picturePath != "" {
		in.PicturePath = &picturePath
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		discardPicture()
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetFriends handles GET /users/:id/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	friends, err := s.friendService.GetFriends(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(friends)
}

// ToggleFriend handles PATCH /users/:id/:friendId. The caller must be :id.
func (s *Server) ToggleFriend(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	friendID, err := s.parseID(c, "friendId")
	if err != nil {
		return nil
	}
	if _, err := requireSelf(c, id); err != nil {
		return nil
	}

	friends, err := s.friendService.ToggleFriend(c.UserContext(), id, friendID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(friends)
}
