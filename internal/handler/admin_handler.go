package handler

import (
	"net/url"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler exposes the question bank editor. Routes are mounted behind
// middleware.AdminOnly and middleware.ValidateSourceParam.
type AdminHandler struct {
	service   service.AdminService
	validator *validation.Validator
}

func NewAdminHandler(service service.AdminService, validator *validation.Validator) *AdminHandler {
	return &AdminHandler{service: service, validator: validator}
}

// ListQuestions handles GET /api/admin/sources/:source/questions
func (h *AdminHandler) ListQuestions(c *fiber.Ctx) error {
	resp, err := h.service.ListQuestions(c.UserContext(), middleware.Source(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateQuestion handles POST /api/admin/sources/:source/questions
func (h *AdminHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.QuestionPayload
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	created, err := h.service.CreateQuestion(c.UserContext(), middleware.Source(c), &req)
	if err != nil {
		return err
	}
	logger.Get().Info("Question created",
		zap.String("source", middleware.Source(c)),
		zap.String("id", created.ID),
		zap.String("by", middleware.Username(c)))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateQuestions handles PATCH /api/admin/sources/:source/questions. Either every
// edit is applied or none is.
func (h *AdminHandler) UpdateQuestions(c *fiber.Ctx) error {
	var req dto.QuestionEditsRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	updated, err := h.service.UpdateQuestions(c.UserContext(), middleware.Source(c), req.Edits...)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// UpdateQuestion handles PATCH /api/admin/sources/:source/questions/:id
func (h *AdminHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := questionID(c)
	if err != nil {
		return err
	}
	var req dto.QuestionEditPayload
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	req.ID = id

	updated, err := h.service.UpdateQuestions(c.UserContext(), middleware.Source(c), req)
	if err != nil {
		return err
	}
	return c.JSON(updated[0])
}

// DeleteQuestion handles DELETE /api/admin/sources/:source/questions/:id
func (h *AdminHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, err := questionID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteQuestion(c.UserContext(), middleware.Source(c), id); err != nil {
		return err
	}
	logger.Get().Info("Question deleted",
		zap.String("source", middleware.Source(c)),
		zap.String("id", id),
		zap.String("by", middleware.Username(c)))
	return c.SendStatus(fiber.StatusNoContent)
}

func questionID(c *fiber.Ctx) (string, error) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || id == "" {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("id", c.Params("id"))}
	}
	return id, nil
}
