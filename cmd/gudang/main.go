package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gudang/internal/backup"
	"gudang/internal/cli"
	"gudang/internal/config"
	"gudang/internal/database"
	"gudang/internal/repository"
	"gudang/internal/service"
)

func main() {
	if err := run(); err != nil {
		// The outcome line was already printed for failed operations.
		if !errors.Is(err, cli.ErrOperationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Debug().Str("data_file", cfg.Store.DataFile).Msg("starting gudang")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the record store and service
	productRepo := repository.NewJSONProductRepository(cfg.Store.DataFile, logger)
	productService := service.NewProductService(productRepo, logger)

	// Initialize backup backend with S3 and local fallback
	fileBackend := backup.NewFileBackend(cfg.Backup.Dir, logger)
	var snapshotBackend backup.Backend

	if cfg.Backup.S3.Enabled {
		s3Backend, err := backup.NewS3Backend(ctx, cfg.Backup.S3.Bucket, cfg.Backup.S3.Region, cfg.Backup.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 backend, using local backups only")
			snapshotBackend = fileBackend
		} else {
			snapshotBackend = backup.NewFallbackBackend(s3Backend, fileBackend, logger)
		}
	} else {
		snapshotBackend = fileBackend
	}

	app := &cli.App{
		Products:  productService,
		Snapshots: backup.NewManager(productRepo, snapshotBackend, logger),
		Logger:    logger,
	}

	// The mirror pool is opened only by commands that need it
	if cfg.Database.Enabled {
		app.OpenMirror = func(ctx context.Context) (cli.Mirror, func(), error) {
			pool, err := database.NewPool(ctx, cfg.Database, logger)
			if err != nil {
				return nil, nil, err
			}
			return repository.NewPostgresMirror(pool, logger), pool.Close, nil
		}
	}

	return cli.NewRootCommand(app).ExecuteContext(ctx)
}
