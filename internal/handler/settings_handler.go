package handler

import (
	"quiz-runner/internal/dto"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	service   service.SettingsService
	validator *validation.Validator
}

func NewSettingsHandler(service service.SettingsService, validator *validation.Validator) *SettingsHandler {
	return &SettingsHandler{service: service, validator: validator}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	resp, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateSettings handles PUT /api/settings
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.SettingsRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.service.Set(c.UserContext(), req.Difficulty)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
