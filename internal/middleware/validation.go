package middleware

import (
	"net/url"
	"strings"

	"quiz-runner/internal/domain"

	"github.com/gofiber/fiber/v2"
)

const SourceKey = "validated_source"

// ValidateSourceParam checks the :source path parameter names a *.json bank
// file and stores the decoded value for handlers.
func ValidateSourceParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params("source")
		source, err := url.PathUnescape(raw)
		if err != nil || source == "" {
			return domain.ValidationErrors{domain.NewInvalidFormatError("source", raw)}
		}
		if !strings.HasSuffix(source, ".json") || strings.ContainsAny(source, `/\`) || strings.HasPrefix(source, ".") {
			return domain.ValidationErrors{domain.NewInvalidFormatError("source", source)}
		}
		c.Locals(SourceKey, source)
		return c.Next()
	}
}

// Source returns the value stored by ValidateSourceParam.
func Source(c *fiber.Ctx) string {
	s, _ := c.Locals(SourceKey).(string)
	return s
}
