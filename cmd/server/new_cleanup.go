package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts the telemetry providers so tests can verify cleanup
// order without exporters.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup constructs the shutdown hook: close the store first so its
// final log lines are still exported, then flush telemetry.
func newCleanup(telemetry shutdowner, store io.Closer) func() {
	return func() {
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}

		if telemetry != nil {
			shutdownTelemetry(telemetry)
		}
	}
}
