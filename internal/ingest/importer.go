// Package ingest loads sale records from CSV exports into a sales store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/truestate/sales/internal/domain"
)

// DefaultBatchSize is the number of records written per InsertSales call.
const DefaultBatchSize = 1000

// Writer stores batches of sale records.
type Writer interface {
	// InsertSales stores records, skipping any whose ID already exists,
	// and returns how many were inserted.
	InsertSales(ctx context.Context, records []domain.SaleRecord) (int, error)
}

// Truncater empties the store before a replacing import.
type Truncater interface {
	Truncate(ctx context.Context) error
}

// Config controls an import run.
type Config struct {
	BatchSize int  // default DefaultBatchSize
	Replace   bool // truncate the store first; the writer must implement Truncater
}

// Stats summarises an import run.
type Stats struct {
	Processed  int // data rows read
	Imported   int // records written
	Skipped    int // rows rejected by the reader
	Duplicates int // valid records the store already held
}

// Importer streams CSV rows into a Writer in fixed-size batches.
type Importer struct {
	writer Writer
	config Config
	newID  func() (uuid.UUID, error)
}

// NewImporter creates an importer writing to w.
func NewImporter(w Writer, config Config) *Importer {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return &Importer{
		writer: w,
		config: config,
		newID:  uuid.NewV7,
	}
}

// Run reads every row from src and writes the valid ones.
// Malformed rows are logged and skipped; a write failure aborts the run
// and the returned Stats cover the batches written before it.
func (im *Importer) Run(ctx context.Context, src io.Reader) (stats Stats, err error) {
	ctx, span := otel.Tracer("github.com/truestate/sales/internal/ingest").Start(ctx, "ingest.Run")
	defer func() {
		span.SetAttributes(
			attribute.Int("ingest.processed", stats.Processed),
			attribute.Int("ingest.imported", stats.Imported),
			attribute.Int("ingest.skipped", stats.Skipped),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()

	if im.config.Replace {
		t, ok := im.writer.(Truncater)
		if !ok {
			return stats, fmt.Errorf("replace requested but %T cannot truncate", im.writer)
		}
		if err := t.Truncate(ctx); err != nil {
			return stats, fmt.Errorf("failed to clear existing records: %w", err)
		}
		slog.InfoContext(ctx, "cleared existing sale records")
	}

	reader, err := NewReader(src)
	if err != nil {
		return stats, err
	}

	batch := make([]domain.SaleRecord, 0, im.config.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			stats.Processed++
			stats.Skipped++
			slog.WarnContext(ctx, "skipping csv row", "row", rowErr.Row, "error", rowErr.Err)
			continue
		}
		if err != nil {
			return stats, err
		}

		stats.Processed++
		id, err := im.newID()
		if err != nil {
			return stats, fmt.Errorf("failed to generate record id: %w", err)
		}
		rec.ID = id.String()
		batch = append(batch, rec)

		if len(batch) == im.config.BatchSize {
			if err := im.flush(ctx, batch, &stats); err != nil {
				return stats, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := im.flush(ctx, batch, &stats); err != nil {
			return stats, err
		}
	}

	slog.InfoContext(ctx, "csv import completed",
		"processed", stats.Processed,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"duplicates", stats.Duplicates,
		"duration_ms", time.Since(start).Milliseconds())
	return stats, nil
}

func (im *Importer) flush(ctx context.Context, batch []domain.SaleRecord, stats *Stats) error {
	inserted, err := im.writer.InsertSales(ctx, batch)
	if err != nil {
		return fmt.Errorf("failed to write batch of %d records: %w", len(batch), err)
	}
	stats.Imported += inserted
	stats.Duplicates += len(batch) - inserted

	slog.InfoContext(ctx, "imported sale records", "total", stats.Imported)
	return nil
}
