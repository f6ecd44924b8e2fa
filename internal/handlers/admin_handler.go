package handlers

import (
	"astromatch/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the administration panel operations.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// RegisterRoutes registers the admin routes behind guard.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	adminRoutes := router.Group("/admin", guard)
	adminRoutes.Get("/users", h.HandleUsers)
	adminRoutes.Get("/messages", h.HandleMessages)
	adminRoutes.Delete("/users/:id", h.HandleDeleteUser)
	adminRoutes.Delete("/messages/:id", h.HandleDeleteMessage)
}

// HandleUsers lists every member.
func (h *AdminHandler) HandleUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext())
	if err != nil {
		return fail(c, err, "Users could not be loaded")
	}
	return c.JSON(users)
}

// HandleMessages lists the most recent messages; ?limit= overrides 50.
func (h *AdminHandler) HandleMessages(c *fiber.Ctx) error {
	msgs, err := h.service.RecentMessages(c.UserContext(), c.QueryInt("limit", services.DefaultRecentLimit))
	if err != nil {
		return fail(c, err, "Messages could not be loaded")
	}
	return c.JSON(msgs)
}

// HandleDeleteUser removes a member and every message they took part in.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	removed, err := h.service.DeleteUser(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "User could not be deleted")
	}
	return c.JSON(fiber.Map{
		"message":          "User deleted",
		"messages_deleted": removed,
	})
}

// HandleDeleteMessage removes one message.
func (h *AdminHandler) HandleDeleteMessage(c *fiber.Ctx) error {
	if err := h.service.DeleteMessage(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "Message could not be deleted")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
