package handlers

import (
	"errors"
	"fmt"

	"astromatch/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// badBody answers a request whose body could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed lists the failing fields of a request.
func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// fail maps a service error to a response. Failures that are not part of
// the business error set are logged and answered with a message naming the
// action, never with the underlying store error.
func fail(c *fiber.Ctx, err error, action string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNoSession):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrMessageNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUsernameTaken):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg(action)
		return c.Status(status).JSON(fiber.Map{"message": action})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": action,
		"error":   err.Error(),
	})
}
