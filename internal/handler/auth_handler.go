package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-offer-match/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest changes the password of the named reviewer.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login exchanges reviewer credentials for a bearer token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// ResetPassword invalidates tokens issued before the change.
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, old_password, and new_password are required"})
	}

	err := h.authService.ChangePassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Password updated successfully"})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
		return c.Status(401).JSON(fiber.Map{"error": service.ErrInvalidCredentials.Error()})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
