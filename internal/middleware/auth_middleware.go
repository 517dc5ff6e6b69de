package middleware

import (
	"errors"
	"strings"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "

	// Keys for values stored in fiber.Ctx locals
	UsernameKey  = "username"
	SessionIDKey = "sessionID"
	RoleKey      = "role"
)

// Protected requires a valid bearer token bound to a live player session.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewUnauthorizedError("Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("Token is empty")
		}

		claims, err := authService.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidJWTToken) {
				return domain.NewUnauthorizedError("Invalid or expired token")
			}
			// session lookups surface as SESSION_NOT_FOUND or an internal error
			return err
		}

		c.Locals(UsernameKey, claims.Username)
		c.Locals(SessionIDKey, claims.SessionID)
		c.Locals(RoleKey, claims.Role)
		return c.Next()
	}
}

// AdminOnly must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(RoleKey).(string); role != dto.RoleAdmin {
			logger.Get().Info("Admin route refused",
				zap.String("path", c.Path()),
				zap.String("username", Username(c)))
			return domain.NewForbiddenError("Administrator access required")
		}
		return c.Next()
	}
}

// SessionID returns the player session id set by Protected.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(SessionIDKey).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(UsernameKey).(string)
	return name
}
