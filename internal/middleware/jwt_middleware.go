package middleware

import (
	"context"
	"errors"
	"strings"

	"astromatch/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Keys under which AuthRequired stores the token identity in c.Locals.
const (
	LocalUserID    = "user_id"
	LocalUsername  = "username"
	LocalSessionID = "sid"
)

// TokenValidator checks a bearer token and the session bound to it.
type TokenValidator interface {
	Authenticate(ctx context.Context, tokenString string) (*services.TokenClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token whose
// session is still open.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := validator.Authenticate(c.UserContext(), parts[1])
		switch {
		case errors.Is(err, services.ErrNoSession):
			log.Debug().Str("path", c.Path()).Msg("session closed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session has ended, please log in again",
			})
		case errors.Is(err, services.ErrInvalidToken):
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		case err != nil:
			log.Error().Err(err).Str("path", c.Path()).Msg("session check failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Session could not be checked",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalSessionID, claims.SessionID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// SessionID returns the session bound to the request token.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}
