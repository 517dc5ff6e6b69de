package handler

import (
	"quiz-runner/internal/dto"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	if err := h.authService.Register(c.UserContext(), req.Username, req.Password); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Account created"})
}

// Login handles POST /api/auth/login. The returned token is bound to a fresh player session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Successfully logged out"})
}
