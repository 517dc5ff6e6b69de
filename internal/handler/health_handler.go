package handler

import (
	"context"
	"time"

	"quiz-runner/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler builds a handler running the named checks on every call.
// With no checks it only reports the process as up.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /healthz
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			status = "degraded"
			continue
		}
		results[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": results,
	})
}
