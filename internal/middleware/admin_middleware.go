package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// AdminKeyHeader carries the administrator key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards administrative routes with a shared key. An empty key
// leaves the routes open, which is how local development runs.
func AdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		got := c.Get(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin key required",
			})
		}
		return c.Next()
	}
}
