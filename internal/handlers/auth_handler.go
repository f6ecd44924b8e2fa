package handlers

import (
	"astromatch/internal/calendar"
	"astromatch/internal/middleware"
	"astromatch/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for authentication and sessions.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication and session routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)

	sessionRoutes := router.Group("/session", authRequired)
	sessionRoutes.Get("/", h.HandleResume)
	sessionRoutes.Put("/view", h.HandleSaveView)
	sessionRoutes.Delete("/", h.HandleLogout)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Registration failed")
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	res, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return fail(c, err, "Authentication failed")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
		"view":    res.View,
	})
}

// HandleResume restores the caller's session.
func (h *AuthHandler) HandleResume(c *fiber.Ctx) error {
	snap, err := h.authService.Resume(c.UserContext(), middleware.SessionID(c), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Session could not be restored")
	}
	return c.JSON(fiber.Map{
		"user": snap.User,
		"view": snap.View,
	})
}

// ViewRequest is the month the calendar should reopen on.
type ViewRequest struct {
	Year  int `json:"year"`
	Month int `json:"month" validate:"min=1,max=12"`
}

// HandleSaveView stores the last-viewed month of the caller's session.
func (h *AuthHandler) HandleSaveView(c *fiber.Ctx) error {
	var req ViewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	view, err := calendar.NewMonthKey(req.Year, req.Month)
	if err != nil {
		return badBody(c, err)
	}

	snap, err := h.authService.SaveView(c.UserContext(), middleware.SessionID(c), middleware.UserID(c), view)
	if err != nil {
		return fail(c, err, "View could not be saved")
	}
	return c.JSON(fiber.Map{"view": snap.View})
}

// HandleLogout ends the caller's session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.SessionID(c)); err != nil {
		return fail(c, err, "Logout failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
