package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"statbench/adapters/postgres"
	"statbench/internal"
	"statbench/internal/config"
	"statbench/internal/migration"
)

// migrate applies the run-history schema to the configured database. An
// optional argument overrides DATABASE_URL.
func main() {
	logger := internal.DefaultLogger
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	url := cfg.Database.URL
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database.Driver, url)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		logger.Error("migration failed: %v", err)
		os.Exit(1)
	}
	logger.Info("%s database at schema version %s", cfg.Database.Driver, runner.Version())
}
