package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/config"
	"github.com/truestate/sales/internal/infrastructure/persistence/postgres"
	"github.com/truestate/sales/internal/infrastructure/persistence/sqlite"
	"github.com/truestate/sales/internal/ingest"
)

// cliStore is what the commands need from a storage backend.
type cliStore interface {
	sales.Repository
	ingest.Writer
	ingest.Truncater
	io.Closer
}

type storeOptions struct {
	Type       string
	DSN        string
	SQLitePath string
}

// storeOpener opens a store and applies pending migrations.
type storeOpener func(ctx context.Context, opts storeOptions) (cliStore, error)

type app struct {
	v    *viper.Viper
	open storeOpener
}

func newRootCmd(open storeOpener) *cobra.Command {
	a := &app{v: viper.New(), open: open}

	root := &cobra.Command{
		Use:           "salesctl",
		Short:         "Load and query retail sale records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg := a.v.GetString("config"); cfg != "" {
				a.v.SetConfigFile(cfg)
				if err := a.v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file: %w", err)
				}
			}

			slog.SetDefault(slog.New(
				slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(a.v.GetString("log-level"))}),
			))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("storage-type", config.StoragePostgres, "storage backend: postgres|sqlite")
	flags.String("db-dsn", "", "PostgreSQL connection string")
	flags.String("sqlite-path", "sales.db", "SQLite database file")
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug|info|warn|error")

	// Flags double as SALES_* variables: --db-dsn reads SALES_DB_DSN.
	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix("SALES")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.newImportCmd(), a.newQueryCmd(), a.newMigrateCmd())
	return root
}

func (a *app) storeOptions() storeOptions {
	return storeOptions{
		Type:       a.v.GetString("storage-type"),
		DSN:        a.v.GetString("db-dsn"),
		SQLitePath: a.v.GetString("sqlite-path"),
	}
}

func (a *app) openStore(ctx context.Context) (cliStore, func(), error) {
	store, err := a.open(ctx, a.storeOptions())
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close store", "error", err)
		}
	}, nil
}

// openStore is the production storeOpener.
func openStore(ctx context.Context, opts storeOptions) (cliStore, error) {
	switch opts.Type {
	case config.StoragePostgres:
		if opts.DSN == "" {
			return nil, errors.New("--db-dsn or SALES_DB_DSN is required for postgres storage")
		}
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{DSN: opts.DSN})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q (want postgres or sqlite)", opts.Type)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
