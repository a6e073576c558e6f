package main

import (
	"context"
	"os"
	"strconv"

	"github.com/fhuszti/music-delivery-ms-go/internal/config"
	"github.com/fhuszti/music-delivery-ms-go/internal/db"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/migration"
)

// usage: migrate [up | down [steps] | status]
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, db.WithMultiStatements())
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "⚠️  Closing database: %v", err)
		}
	}()

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "status" {
		version, dirty, err := migration.Status(database.DB)
		if err != nil {
			logger.Errorf(ctx, "❌  Could not read schema version: %v", err)
			os.Exit(1)
		}
		logger.Infof(ctx, "📋  Schema at version %d (dirty=%t)", version, dirty)
		return
	}
	if len(args) > 0 && args[0] == "down" {
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				logger.Errorf(ctx, "❌  Invalid number of steps %q", args[1])
				os.Exit(1)
			}
		}
		if err := migration.MigrateDown(database.DB, steps); err != nil {
			logger.Errorf(ctx, "❌  Migration down failed: %v", err)
			os.Exit(1)
		}
		logger.Infof(ctx, "✅  Rolled back %d migration(s)", steps)
		return
	}

	if err := migration.MigrateUp(database.DB); err != nil {
		logger.Errorf(ctx, "❌  Migration up failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Migrations applied successfully")
}
