package handlers

import "github.com/gofiber/fiber/v2"

// PageHandler serves the server-rendered pages. All data-bearing pages pull
// their identity from the guard's Locals, never from the client.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{})
}

func (h *PageHandler) LoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{})
}

func (h *PageHandler) RegisterPage(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{})
}

func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	return c.Render("dashboard", fiber.Map{
		"UserID": c.Locals("user_id"),
		"Role":   c.Locals("role"),
	})
}

func (h *PageHandler) AddWorkoutPage(c *fiber.Ctx) error {
	return c.Render("add_workout", fiber.Map{
		"Role": c.Locals("role"),
	})
}
