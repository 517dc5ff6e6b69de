package main

import (
	"context"
	"flag"
	"log"

	"quiz-runner/internal/config"
	"quiz-runner/internal/database"
	"quiz-runner/internal/logger"

	"go.uber.org/zap"
)

// Creates (or with -down drops) the quiz_accounts table used by the oracle account backend.
func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.DB, database.Migrations(), *down); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
	l.Info("Migrations finished", zap.Bool("down", *down))
}
