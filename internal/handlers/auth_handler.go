package handlers

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/juhum/We-Go-Jim/internal/middleware"
	"github.com/juhum/We-Go-Jim/internal/models"
	"github.com/juhum/We-Go-Jim/internal/services"
	"github.com/juhum/We-Go-Jim/pkg/utils"
)

type authFlowService interface {
	Register(ctx context.Context, input services.RegisterInput) error
	Login(ctx context.Context, existingToken, email, password string) (*models.Session, error)
	Logout(ctx context.Context, token string)
}

type AuthHandler struct {
	auth       authFlowService
	sessionTTL time.Duration
}

func NewAuthHandler(auth authFlowService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, sessionTTL: sessionTTL}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	IsTrainer bool   `json:"isTrainer"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid email format"})
	}
	req.Email = strings.ToLower(parsedEmail.Address)

	err = h.auth.Register(c.Context(), services.RegisterInput{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		IsTrainer: req.IsTrainer,
	})
	if err != nil {
		if errors.Is(err, services.ErrPasswordMismatch) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"success": false, "message": "Passwords do not match"})
		}
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": utils.SanitizeProviderError(err.Error())})
	}

	return c.JSON(fiber.Map{"success": true, "message": "User registered successfully"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	existingToken := c.Cookies(middleware.SessionCookieName)
	session, err := h.auth.Login(c.Context(), existingToken, req.Email, req.Password)
	if err != nil {
		// Uniform failure: wrong password, unknown user and provider outages
		// all read the same from outside.
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Incorrect username or password"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"success": true, "message": "User logged in successfully"})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.Context(), c.Cookies(middleware.SessionCookieName))

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect("/login", fiber.StatusFound)
}
