package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/saharsh4u/startupmanch/internal/application"
	"github.com/saharsh4u/startupmanch/internal/config"
	"github.com/saharsh4u/startupmanch/internal/db"
)

// Runs the embedded goose migrations and exits. Deployed as an init
// container in front of the web service.
func main() {
	slog.Info("Starting database migrator")

	startupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conf, err := config.LoadConfig(startupCtx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseRetries <= 0 {
		conf.DatabaseRetries = 10
	}

	pool, err := application.OpenDBPoolWithRetry(startupCtx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	databaseConnection, err := db.NewDatabaseConnection(startupCtx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer databaseConnection.Close()

	if err := databaseConnection.Migrate(startupCtx); err != nil {
		slog.Error("failed to run PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("Database migrations completed successfully")
}
