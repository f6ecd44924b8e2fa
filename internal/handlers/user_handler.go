package handlers

import (
	"astromatch/internal/middleware"
	"astromatch/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for member profiles.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Put("/me/photo", authRequired, h.HandleUpdatePhoto)
	userRoutes.Get("/:id", h.HandleGetUser)
}

// HandleGetUsers lists every member, newest first.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, err, "Users could not be loaded")
	}
	return c.JSON(users)
}

// HandleGetUser returns one member.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "User could not be loaded")
	}
	return c.JSON(user)
}

// PhotoRequest carries an opaque photo reference.
type PhotoRequest struct {
	ProfilePhoto string `json:"profile_photo" validate:"required,max=1048576"`
}

// HandleUpdatePhoto sets the caller's own photo.
func (h *UserHandler) HandleUpdatePhoto(c *fiber.Ctx) error {
	var req PhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.service.UpdatePhoto(c.UserContext(), middleware.UserID(c), req.ProfilePhoto)
	if err != nil {
		return fail(c, err, "Photo could not be updated")
	}
	log.Info().Str("user_id", user.ID).Msg("profile photo updated")
	return c.JSON(user)
}
