package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenParser validates a bearer token and returns the user it was issued to.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// AuthRequired is a middleware that enforces bearer-token authentication for API routes.
func AuthRequired(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		userID, err := tokens.Parse(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		WithUserID(c, userID)
		return c.Next()
	}
}
