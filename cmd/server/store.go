package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/config"
	"github.com/truestate/sales/internal/infrastructure/persistence/memory"
	"github.com/truestate/sales/internal/infrastructure/persistence/postgres"
	"github.com/truestate/sales/internal/infrastructure/persistence/sqlite"
	"github.com/truestate/sales/internal/ingest"
)

// salesStore is what every storage backend provides to the server.
type salesStore interface {
	sales.Repository
	ingest.Writer
	io.Closer
}

// openStore opens the backend selected by cfg.Storage.Type.
func openStore(ctx context.Context, cfg *config.ServerConfig) (salesStore, error) {
	switch cfg.Storage.Type {
	case config.StoragePostgres:
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		slog.InfoContext(ctx, "storage initialized", "type", "postgres", "url", maskPassword(cfg.Database.DSN))
		return store, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
		slog.InfoContext(ctx, "storage initialized", "type", "sqlite", "path", cfg.Storage.SQLitePath)
		return store, nil

	case config.StorageMemory:
		slog.InfoContext(ctx, "storage initialized", "type", "memory")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// seedStore replaces the contents of store with cfg.SeedCSV when set.
// Restarting against a persistent sqlite file therefore reloads the data
// rather than appending it again.
func seedStore(ctx context.Context, cfg config.StorageConfig, store ingest.Writer) error {
	if cfg.SeedCSV == "" {
		return nil
	}
	if cfg.Type == config.StoragePostgres {
		slog.WarnContext(ctx, "ignoring SALES_SEED_CSV for postgres storage; use salesctl import")
		return nil
	}

	src, err := ingest.Opener{}.Open(ctx, cfg.SeedCSV)
	if err != nil {
		return fmt.Errorf("failed to open seed data: %w", err)
	}
	defer src.Close()

	stats, err := ingest.NewImporter(store, ingest.Config{Replace: true}).Run(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to seed store from %s: %w", cfg.SeedCSV, err)
	}

	slog.InfoContext(ctx, "store seeded",
		"source", cfg.SeedCSV,
		"processed", stats.Processed,
		"imported", stats.Imported,
		"skipped", stats.Skipped)
	return nil
}
