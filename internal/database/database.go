package database

import (
	"context"
	"fmt"
	"time"

	"quiz-runner/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
)

// DriverName is the database/sql name go-ora registers itself under.
const DriverName = "oracle"

func init() {
	// go-ora expects :name placeholders
	sqlx.BindDriver(DriverName, sqlx.NAMED)
}

func NewSQLXOracleDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Get().Info("Successfully connected to Oracle database")
	return db, nil
}
