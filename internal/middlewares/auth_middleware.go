package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const userIDLocalKey = "user_id"

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// BearerAuthMiddleware rejects unauthenticated requests before any handler
// runs, independent of provider reachability.
func BearerAuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		userID, err := verifier.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid bearer token",
			})
		}

		c.Locals(userIDLocalKey, userID)

		return c.Next()
	}
}

// UserID returns the caller id the auth middleware resolved for this request.
func UserID(c fiber.Ctx) string {
	userID, _ := c.Locals(userIDLocalKey).(string)
	return userID
}
