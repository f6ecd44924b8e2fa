package handlers

import (
	"astromatch/internal/services"
	"astromatch/internal/zodiac"

	"github.com/gofiber/fiber/v2"
)

// CalendarHandler serves the birthday calendar and the zodiac lookup.
type CalendarHandler struct {
	service *services.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(service *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		service: service,
	}
}

// RegisterRoutes registers the calendar and zodiac routes.
func (h *CalendarHandler) RegisterRoutes(router fiber.Router) {
	calendarRoutes := router.Group("/calendar")
	// Registered first so that "day" is never read as a year.
	calendarRoutes.Get("/day/:date", h.HandleDay)
	calendarRoutes.Get("/:year/:month", h.HandleMonth)

	router.Get("/zodiac/:date", h.HandleZodiac)
}

// HandleMonth renders a month grid. ?lang=tr switches to Turkish names.
func (h *CalendarHandler) HandleMonth(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Year must be a number"})
	}
	month, err := c.ParamsInt("month")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Month must be a number"})
	}

	grid, err := h.service.Month(c.UserContext(), year, month, c.Query("lang"))
	if err != nil {
		return fail(c, err, "Calendar could not be loaded")
	}
	return c.JSON(grid)
}

// HandleDay lists the members born on the month and day of :date.
func (h *CalendarHandler) HandleDay(c *fiber.Ctx) error {
	date := c.Params("date")
	users, err := h.service.Day(c.UserContext(), date)
	if err != nil {
		return fail(c, err, "Birthdays could not be loaded")
	}
	return c.JSON(fiber.Map{
		"date":  date,
		"users": users,
	})
}

// HandleZodiac classifies a date.
func (h *CalendarHandler) HandleZodiac(c *fiber.Ctx) error {
	date := c.Params("date")
	sign, err := zodiac.ClassifyString(date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Date must be in YYYY-MM-DD form",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"date":  date,
		"sign":  sign,
		"label": sign.Label(c.Query("lang")),
	})
}
