package handler

import (
	"quiz-runner/internal/dto"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests. Every route acts on the
// caller's player session.
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validator,
	}
}

// ListSources handles GET /api/sources
func (h *QuizHandler) ListSources(c *fiber.Ctx) error {
	resp, err := h.service.ListSources(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Prepare handles POST /api/quiz/prepare
func (h *QuizHandler) Prepare(c *fiber.Ctx) error {
	var req dto.PrepareQuizRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.service.Prepare(c.UserContext(), middleware.SessionID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Start handles POST /api/quiz/start
func (h *QuizHandler) Start(c *fiber.Ctx) error {
	resp, err := h.service.Start(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// State handles GET /api/quiz/state
func (h *QuizHandler) State(c *fiber.Ctx) error {
	resp, err := h.service.State(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CurrentQuestion handles GET /api/quiz/current
func (h *QuizHandler) CurrentQuestion(c *fiber.Ctx) error {
	resp, err := h.service.CurrentQuestion(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Answer handles POST /api/quiz/answer
func (h *QuizHandler) Answer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.service.Answer(c.UserContext(), middleware.SessionID(c), *req.Option)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Report handles GET /api/quiz/report
func (h *QuizHandler) Report(c *fiber.Ctx) error {
	resp, err := h.service.Report(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Restart handles POST /api/quiz/restart
func (h *QuizHandler) Restart(c *fiber.Ctx) error {
	resp, err := h.service.Restart(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
