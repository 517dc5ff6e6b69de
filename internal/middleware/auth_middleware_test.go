package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manual mock of service.AuthService; only Authenticate is used by the middleware.
type ManualMockAuthService struct {
	AuthenticateFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockAuthService) Register(ctx context.Context, username, password string) error {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) Logout(ctx context.Context, sessionID string) error {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	panic("not implemented in mock")
}

func (m *ManualMockAuthService) Authenticate(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, tokenString)
	}
	return nil, errors.New("AuthenticateFunc not set on mock")
}

var _ service.AuthService = (*ManualMockAuthService)(nil)

func newProtectedApp(svc service.AuthService, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handlers := append([]fiber.Handler{middleware.Protected(svc)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"username":   middleware.Username(c),
			"session_id": middleware.SessionID(c),
		})
	})
	app.Get("/test", handlers...)
	return app
}

func decodeError(t *testing.T, body io.Reader) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestProtected(t *testing.T) {
	playerClaims := &dto.AuthClaims{Username: "alice", Role: dto.RolePlayer, SessionID: "sess-1"}

	tests := []struct {
		name           string
		authHeader     string
		authenticate   func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "No Auth Header",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   string(domain.CodeUnauthorized),
		},
		{
			name:           "Wrong Scheme",
			authHeader:     "Basic abc",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   string(domain.CodeUnauthorized),
		},
		{
			name:           "Empty Token",
			authHeader:     "Bearer ",
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   string(domain.CodeUnauthorized),
		},
		{
			name:       "Invalid Token",
			authHeader: "Bearer bad",
			authenticate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return nil, fmt.Errorf("%w: signature is invalid", service.ErrInvalidJWTToken)
			},
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   string(domain.CodeUnauthorized),
		},
		{
			name:       "Session Gone",
			authHeader: "Bearer stale",
			authenticate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				return nil, domain.NewSessionNotFoundError("sess-1")
			},
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   string(domain.CodeSessionNotFound),
		},
		{
			name:       "Valid Token",
			authHeader: "Bearer good",
			authenticate: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
				assert.Equal(t, "good", tokenString)
				return playerClaims, nil
			},
			expectedStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(&ManualMockAuthService{AuthenticateFunc: tt.authenticate})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set(middleware.AuthorizationHeader, tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == fiber.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "alice", body["username"])
				assert.Equal(t, "sess-1", body["session_id"])
				return
			}
			assert.Equal(t, tt.expectedCode, decodeError(t, resp.Body).Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		expectedStatus int
	}{
		{"admin passes", dto.RoleAdmin, fiber.StatusOK},
		{"player refused", dto.RolePlayer, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ManualMockAuthService{
				AuthenticateFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
					return &dto.AuthClaims{Username: "u", Role: tt.role, SessionID: "s"}, nil
				},
			}
			app := newProtectedApp(svc, middleware.AdminOnly())

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(middleware.AuthorizationHeader, "Bearer tok")
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
