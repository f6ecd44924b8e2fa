package handlers

import (
	"astromatch/internal/middleware"
	"astromatch/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles HTTP requests for direct messages.
type MessageHandler struct {
	service  *services.MessageService
	validate *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the message routes. All of them need a session.
func (h *MessageHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	messageRoutes := router.Group("/messages", authRequired)
	messageRoutes.Post("/", h.HandleSend)
	messageRoutes.Get("/inbox", h.HandleInbox)
	messageRoutes.Get("/thread/:userId", h.HandleThread)
}

// SendRequest is the body of a new message.
type SendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// HandleSend stores a message from the caller.
func (h *MessageHandler) HandleSend(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	msg, err := h.service.Send(c.UserContext(), middleware.UserID(c), req.ReceiverID, req.Text)
	if err != nil {
		return fail(c, err, "Message could not be sent")
	}
	log.Info().Str("message_id", msg.ID).Str("sender_id", msg.SenderID).Str("receiver_id", msg.ReceiverID).Msg("message sent")
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// HandleThread returns the caller's thread with :userId, oldest first.
func (h *MessageHandler) HandleThread(c *fiber.Ctx) error {
	msgs, err := h.service.Thread(c.UserContext(), middleware.UserID(c), c.Params("userId"))
	if err != nil {
		return fail(c, err, "Messages could not be loaded")
	}
	return c.JSON(msgs)
}

// HandleInbox returns the caller's conversations.
func (h *MessageHandler) HandleInbox(c *fiber.Ctx) error {
	convs, err := h.service.Inbox(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Inbox could not be loaded")
	}
	return c.JSON(convs)
}
