package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/truestate/sales/internal/domain"
)

const instrumentationName = "github.com/truestate/sales/internal/application/sales"

// Config holds configuration for the Service.
type Config struct {
	DefaultPageSize int
}

// Service runs sales queries against a Repository.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	repo       Repository
	normalizer Normalizer
	tracer     trace.Tracer

	queryDuration metric.Float64Histogram
	invalidRanges metric.Int64Counter
}

// NewService creates a new sales service.
// Applies domain defaults for zero or invalid config values.
func NewService(repo Repository, config Config) *Service {
	meter := otel.Meter(instrumentationName)

	queryDuration, err := meter.Float64Histogram("sales.query.duration",
		metric.WithDescription("Duration of sales queries including fetch and count"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("failed to create sales.query.duration histogram", "error", err)
		queryDuration = noop.Float64Histogram{}
	}

	invalidRanges, err := meter.Int64Counter("sales.query.invalid_range",
		metric.WithDescription("Sales queries short-circuited by an inverted age range"))
	if err != nil {
		slog.Warn("failed to create sales.query.invalid_range counter", "error", err)
		invalidRanges = noop.Int64Counter{}
	}

	return &Service{
		repo:          repo,
		normalizer:    NewNormalizer(config.DefaultPageSize),
		tracer:        otel.Tracer(instrumentationName),
		queryDuration: queryDuration,
		invalidRanges: invalidRanges,
	}
}

// Query normalizes raw params and runs the resulting query.
func (s *Service) Query(ctx context.Context, params Params) (*domain.SalesPage, error) {
	return s.QuerySales(ctx, s.normalizer.Normalize(params))
}

// QuerySales runs opts against the repository and assembles the result page.
//
// An inverted age range returns an empty page flagged InvalidRange without
// reading the store. Otherwise the page fetch and the total count are issued
// concurrently; if either fails the other is cancelled and the error is returned.
func (s *Service) QuerySales(ctx context.Context, opts domain.QueryOptions) (*domain.SalesPage, error) {
	ctx, span := s.tracer.Start(ctx, "sales.QuerySales")
	defer span.End()

	window := Paginate(opts.Page, opts.PageSize)

	if opts.HasInvalidAgeRange() {
		span.SetAttributes(attribute.Bool("sales.invalid_range", true))
		s.invalidRanges.Add(ctx, 1)
		return &domain.SalesPage{
			Items:        []domain.SaleRecord{},
			Page:         1,
			PageSize:     window.Limit,
			InvalidRange: true,
		}, nil
	}

	filter := CompileFilter(opts)
	sort := CompileSort(opts.SortBy, opts.SortOrder)

	span.SetAttributes(
		attribute.Int("sales.filter.clauses", len(filter.Clauses)),
		attribute.String("sales.sort.field", string(sort.Field)),
		attribute.Bool("sales.sort.descending", sort.Descending),
		attribute.Int("sales.page", window.Page),
		attribute.Int("sales.page_size", window.Limit),
	)

	start := time.Now()
	items, totalItems, err := s.fetchPage(ctx, filter, sort, window)
	s.queryDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Bool("error", err != nil)))
	if err != nil {
		slog.ErrorContext(ctx, "sales query failed",
			"error", err,
			"page", window.Page,
			"page_size", window.Limit,
			"clauses", len(filter.Clauses))
		span.RecordError(err)
		span.SetStatus(codes.Error, "sales query failed")
		return nil, err
	}

	totalPages := TotalPages(totalItems, window.Limit)
	span.SetAttributes(attribute.Int("sales.total_items", totalItems))

	return &domain.SalesPage{
		Items:       items,
		Page:        window.Page,
		PageSize:    window.Limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNextPage: window.Page < totalPages,
		HasPrevPage: window.Page > 1,
	}, nil
}

// fetchPage issues the page fetch and the count concurrently and waits for both.
func (s *Service) fetchPage(ctx context.Context, filter domain.Filter, sort domain.Sort, window Window) ([]domain.SaleRecord, int, error) {
	g, gctx := errgroup.WithContext(ctx)

	var items []domain.SaleRecord
	g.Go(func() error {
		found, err := s.repo.FindSales(gctx, filter, sort, window.Skip, window.Limit)
		if err != nil {
			return fmt.Errorf("failed to find sales: %w", err)
		}
		items = found
		return nil
	})

	var total int
	g.Go(func() error {
		count, err := s.repo.CountSales(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to count sales: %w", err)
		}
		total = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if items == nil {
		items = []domain.SaleRecord{}
	}
	return items, total, nil
}
