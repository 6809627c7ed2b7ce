package testutil

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Identity stands in for the JWT middleware in handler tests: when the
// X-User-ID header is present it plants a token carrying that user_id in
// locals, exactly where the real middleware would.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": float64(id)}})
			}
		}
		return c.Next()
	}
}
