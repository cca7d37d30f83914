package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth resolves the caller identity from the access token (Bearer
// header or cookie) and stores it in locals. Everything behind it can assume
// an authenticated user id.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			if after, found := strings.CutPrefix(header, "Bearer "); found {
				token = after
			}
		}

		userID, err := ResolveUserID(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing access token",
			})
		}

		c.Locals("user_id", userID.String())
		c.Locals("uid", userID)
		return c.Next()
	}
}

// CallerID returns the authenticated user id set by RequireAuth.
func CallerID(c *fiber.Ctx) (uuid.UUID, bool) {
	uid, ok := c.Locals("uid").(uuid.UUID)
	return uid, ok
}
