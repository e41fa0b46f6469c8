package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/config"
	httpserver "github.com/truestate/sales/internal/infrastructure/http"
	"github.com/truestate/sales/internal/infrastructure/http/handler"
	"github.com/truestate/sales/internal/infrastructure/observability"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialised if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context for all normal operations; cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(telemetry.Logger)

	slog.InfoContext(ctx, "starting sales service",
		"storage", cfg.Storage.Type,
		"otel_enabled", cfg.Observability.OTelEnabled)

	store, err := openStore(ctx, cfg)
	if err != nil {
		shutdownTelemetry(telemetry)
		return err
	}
	cleanup := newCleanup(telemetry, store)
	defer cleanup()

	if err := seedStore(ctx, cfg.Storage, store); err != nil {
		return err
	}

	svc := sales.NewService(store, sales.Config{DefaultPageSize: cfg.Query.DefaultPageSize})

	server := httpserver.NewAPIServer(handler.NewRouter(svc), httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		// The root context is already cancelled; give in-flight requests a fresh window.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown HTTP server", "error", err)
			return err
		}
		slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
		return nil
	case err := <-errResult:
		return err
	}
}

func shutdownTelemetry(telemetry shutdowner) {
	// Bounded so an unreachable collector cannot hang the exit.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown telemetry", "error", err)
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
