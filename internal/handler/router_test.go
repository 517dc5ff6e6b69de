package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-runner/internal/adapter"
	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/handler"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/repository"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dataDir  = "/data"
	testBank = `[
  {"id": "q1", "question": "Capital of France?", "category": "geo", "difficulty": "easy",
   "options": ["Paris", "Rome", "Berlin"], "correct_answer": "Paris", "image_path": null},
  {"id": "q2", "question": "Capital of Italy?", "category": "geo", "difficulty": "medium",
   "options": ["Madrid", "Lisbon"], "correct_answer": "Rome", "image_path": null}
]`
)

type testServer struct {
	app *fiber.App
	fs  afero.Fs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, dataDir+"/geo.json", []byte(testBank), 0o644))

	hasher, err := adapter.NewPasswordHasher(config.PasswordHashSHA256)
	require.NoError(t, err)

	images := adapter.NewFSImageResolver(fs, dataDir)
	bank := repository.NewFileQuestionBank(fs, dataDir, images, "settings.json", "users.json")
	settings := repository.NewFileSettingsRepository(fs, dataDir+"/settings.json")
	accounts := repository.NewFileAccountRepository(fs, dataDir+"/users.json")
	sessions := service.NewMemorySessionStore(time.Hour)

	authService, err := service.NewAuthService(accounts, hasher, sessions, config.AuthConfig{
		JWT:           config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: time.Hour},
		AdminUsername: "admin",
	})
	require.NoError(t, err)

	v := validation.NewValidator()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, v),
		Quiz:     handler.NewQuizHandler(service.NewQuizService(bank, settings, sessions, service.WithImageResolver(images)), v),
		Settings: handler.NewSettingsHandler(service.NewSettingsService(settings), v),
		Admin:    handler.NewAdminHandler(service.NewAdminService(bank), v),
		Health:   handler.NewHealthHandler(nil),
	}, authService)

	return &testServer{app: app, fs: fs}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerSchema+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body dto.ErrorResponse
	decode(t, resp, &body)
	return body.Code
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, "POST", "/api/auth/register", "", dto.CredentialsRequest{Username: username, Password: password})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = s.do(t, "POST", "/api/auth/login", "", dto.CredentialsRequest{Username: username, Password: password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tok dto.TokenResponse
	decode(t, resp, &tok)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, "POST", "/api/auth/register", "", dto.CredentialsRequest{Username: "alice", Password: "pw"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = s.do(t, "POST", "/api/auth/register", "", dto.CredentialsRequest{Username: "alice", Password: "other"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, string(domain.CodeDuplicateAccount), errorCode(t, resp))

	resp = s.do(t, "POST", "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, "POST", "/api/auth/login", "", dto.CredentialsRequest{Username: "alice", Password: "other"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(domain.CodeInvalidCredentials), errorCode(t, resp))

	resp = s.do(t, "POST", "/api/auth/login", "", dto.CredentialsRequest{Username: "alice", Password: "pw"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tok dto.TokenResponse
	decode(t, resp, &tok)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.False(t, tok.Admin)

	resp = s.do(t, "GET", "/api/sources", tok.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sources dto.SourcesResponse
	decode(t, resp, &sources)
	assert.Equal(t, []string{"geo.json"}, sources.Sources)

	resp = s.do(t, "POST", "/api/auth/logout", tok.AccessToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/sources", tok.AccessToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(domain.CodeSessionNotFound), errorCode(t, resp))
}

func TestQuizRoutes_FullPlayThrough(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")
	answers := map[string]string{"q1": "Paris", "q2": "Rome"}

	resp := s.do(t, "GET", "/api/quiz/state", token, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, string(domain.CodeQuizNotPrepared), errorCode(t, resp))

	resp = s.do(t, "POST", "/api/quiz/prepare", token, dto.PrepareQuizRequest{Source: "geo.json", Difficulty: "low"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var state dto.QuizStateResponse
	decode(t, resp, &state)
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, string(domain.StateNotStarted), state.State)

	resp = s.do(t, "GET", "/api/quiz/current", token, nil)
	assert.Equal(t, string(domain.CodeQuizNotStarted), errorCode(t, resp))

	resp = s.do(t, "POST", "/api/quiz/start", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/quiz/report", token, nil)
	assert.Equal(t, string(domain.CodeQuizNotFinished), errorCode(t, resp))

	resp = s.do(t, "POST", "/api/quiz/answer", token, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp = s.do(t, "GET", "/api/quiz/current", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var q dto.QuestionResponse
		decode(t, resp, &q)
		assert.Equal(t, i, q.Index)
		assert.Contains(t, q.Options, answers[q.ID])

		option := answers[q.ID]
		resp = s.do(t, "POST", "/api/quiz/answer", token, dto.AnswerRequest{Option: &option})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var ans dto.AnswerResponse
		decode(t, resp, &ans)
		assert.True(t, ans.Correct)
		assert.Equal(t, i == 1, ans.Finished)
	}

	resp = s.do(t, "GET", "/api/quiz/current", token, nil)
	assert.Equal(t, string(domain.CodeNoCurrentQuestion), errorCode(t, resp))

	resp = s.do(t, "GET", "/api/quiz/report", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report dto.ReportResponse
	decode(t, resp, &report)
	assert.Equal(t, 2, report.CorrectCount)
	assert.Equal(t, 2, report.Total)
	assert.Empty(t, report.WrongIDs)

	resp = s.do(t, "POST", "/api/quiz/restart", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &state)
	assert.Equal(t, string(domain.StateNotStarted), state.State)
	assert.Equal(t, 0, state.CorrectCount)
}

func TestQuizRoutes_UnknownSource(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")

	resp := s.do(t, "POST", "/api/quiz/prepare", token, dto.PrepareQuizRequest{Source: "nope.json"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSettingsRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")

	resp := s.do(t, "GET", "/api/settings", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var settings dto.SettingsResponse
	decode(t, resp, &settings)
	assert.Equal(t, "medium", settings.Difficulty)

	resp = s.do(t, "PUT", "/api/settings", token, dto.SettingsRequest{Difficulty: "hard"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/settings", token, nil)
	decode(t, resp, &settings)
	assert.Equal(t, "hard", settings.Difficulty)

	resp = s.do(t, "PUT", "/api/settings", token, dto.SettingsRequest{Difficulty: "extreme"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	player := s.login(t, "alice", "pw")
	admin := s.login(t, "admin", "root")

	resp := s.do(t, "GET", "/api/admin/sources/geo.json/questions", player, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "GET", "/api/admin/sources/geo.json/questions", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list dto.QuestionListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Questions, 2)

	created := dto.QuestionPayload{
		ID:            "q3",
		Question:      "Capital of Spain?",
		Category:      "geo",
		Difficulty:    "hard",
		Options:       []string{"Madrid", "Porto"},
		CorrectAnswer: "Madrid",
	}
	resp = s.do(t, "POST", "/api/admin/sources/geo.json/questions", admin, created)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = s.do(t, "POST", "/api/admin/sources/geo.json/questions", admin, created)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	before, err := afero.ReadFile(s.fs, dataDir+"/geo.json")
	require.NoError(t, err)
	invalid := created
	invalid.ID = "q4"
	invalid.Options = nil
	resp = s.do(t, "POST", "/api/admin/sources/geo.json/questions", admin, invalid)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	after, err := afero.ReadFile(s.fs, dataDir+"/geo.json")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	category := "spain"
	resp = s.do(t, "PATCH", "/api/admin/sources/geo.json/questions/q3", admin, dto.QuestionEditPayload{Category: &category})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated dto.QuestionPayload
	decode(t, resp, &updated)
	assert.Equal(t, "q3", updated.ID)
	assert.Equal(t, "spain", updated.Category)

	resp = s.do(t, "PATCH", "/api/admin/sources/geo.json/questions", admin, dto.QuestionEditsRequest{
		Edits: []dto.QuestionEditPayload{{ID: "q1", Category: &category}, {ID: "missing", Category: &category}},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, "DELETE", "/api/admin/sources/geo.json/questions/q3", admin, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = s.do(t, "GET", "/api/admin/sources/geo.json/questions", admin, nil)
	decode(t, resp, &list)
	require.Len(t, list.Questions, 2)
	assert.Equal(t, "geo", list.Questions[0].Category)

	resp = s.do(t, "GET", "/api/admin/sources/notes.txt/questions", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
