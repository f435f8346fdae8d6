package middleware

import (
	"context"

	"sociopedia/internal/auth"
	"sociopedia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier validates an Authorization header value.
type TokenVerifier interface {
	Verify(ctx context.Context, header string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid token before any handler runs.
// On success the caller id is stored in c.Locals("userID") and the claims in
// c.Locals("claims").
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Verify(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}
