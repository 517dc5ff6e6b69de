package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"quiz-runner/internal/adapter"
	"quiz-runner/internal/cache"
	"quiz-runner/internal/config"
	"quiz-runner/internal/database"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/handler"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/middleware"
	"quiz-runner/internal/repository"
	"quiz-runner/internal/service"
	"quiz-runner/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	fs := afero.NewOsFs()
	checks := map[string]handler.HealthCheck{}

	hasher, err := adapter.NewPasswordHasher(cfg.Auth.PasswordHash)
	if err != nil {
		appLogger.Fatal("Failed to create password hasher", zap.Error(err))
	}

	// Accounts
	var accounts domain.AccountRepository
	switch cfg.Auth.AccountBackend {
	case config.AccountBackendOracle:
		db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		accounts = repository.NewSQLXAccountRepository(db)
		checks["database"] = db.PingContext
	default:
		accounts = repository.NewFileAccountRepository(fs, filepath.Join(cfg.Data.Dir, cfg.Data.UsersFile))
	}
	appLogger.Info("Account store initialized", zap.String("backend", cfg.Auth.AccountBackend))

	// Player sessions
	var sessions domain.SessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Successfully connected to Redis")
		cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
		sessions = service.NewCacheSessionStore(cacheAdapter, cfg.Session.TTL)
		checks["redis"] = cacheAdapter.Ping
	default:
		sessions = service.NewMemorySessionStore(cfg.Session.TTL)
	}
	appLogger.Info("Session store initialized", zap.String("backend", cfg.Session.Backend))

	// Question banks and settings share the data directory
	images := adapter.NewFSImageResolver(fs, cfg.Data.Dir)
	bank := repository.NewFileQuestionBank(fs, cfg.Data.Dir, images, cfg.Data.SettingsFile, cfg.Data.UsersFile)
	settings := repository.NewFileSettingsRepository(fs, filepath.Join(cfg.Data.Dir, cfg.Data.SettingsFile))

	// Initialize services
	authService, err := service.NewAuthService(accounts, hasher, sessions, cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	quizService := service.NewQuizService(bank, settings, sessions, service.WithImageResolver(images))
	settingsService := service.NewSettingsService(settings)
	adminService := service.NewAdminService(bank)

	// Initialize handlers
	v := validation.NewValidator()
	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, v),
		Quiz:     handler.NewQuizHandler(quizService, v),
		Settings: handler.NewSettingsHandler(settingsService, v),
		Admin:    handler.NewAdminHandler(adminService, v),
		Health:   handler.NewHealthHandler(checks),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	handler.RegisterRoutes(app, handlers, authService)

	go func() {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Logger.Env),
			zap.String("data_dir", cfg.Data.Dir))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
