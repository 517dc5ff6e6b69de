package handler

import (
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth     *AuthHandler
	Quiz     *QuizHandler
	Settings *SettingsHandler
	Admin    *AdminHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the HTTP API on app.
func RegisterRoutes(app *fiber.App, h Handlers, authService service.AuthService) {
	app.Get("/healthz", h.Health.Health)

	api := app.Group("/api")
	protected := middleware.Protected(authService)

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", protected, h.Auth.Logout)

	api.Get("/sources", protected, h.Quiz.ListSources)
	api.Get("/settings", protected, h.Settings.GetSettings)
	api.Put("/settings", protected, h.Settings.UpdateSettings)

	quiz := api.Group("/quiz", protected)
	quiz.Post("/prepare", h.Quiz.Prepare)
	quiz.Post("/start", h.Quiz.Start)
	quiz.Get("/state", h.Quiz.State)
	quiz.Get("/current", h.Quiz.CurrentQuestion)
	quiz.Post("/answer", h.Quiz.Answer)
	quiz.Get("/report", h.Quiz.Report)
	quiz.Post("/restart", h.Quiz.Restart)

	admin := api.Group("/admin", protected, middleware.AdminOnly())
	questions := admin.Group("/sources/:source/questions")
	source := middleware.ValidateSourceParam()
	questions.Get("/", source, h.Admin.ListQuestions)
	questions.Post("/", source, h.Admin.CreateQuestion)
	questions.Patch("/", source, h.Admin.UpdateQuestions)
	questions.Patch("/:id", source, h.Admin.UpdateQuestion)
	questions.Delete("/:id", source, h.Admin.DeleteQuestion)
}
