package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/postgres"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewMigrateConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	migrator := postgres.NewMigrator(db)

	logger.Info("Running database migrations...")

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		if err := migrator.WriteTo(ctx, os.Stdout); err != nil {
			logger.Fatalw("Failed to generate migration SQL", "error", err)
		}
	} else {
		applied, err := migrator.Up(ctx)
		if err != nil {
			logger.Fatalw("Failed to apply migrations", "error", err)
		}
		logger.Infow("Migration completed successfully", "applied", applied)
	}

	fmt.Println("Migration process completed")
}
