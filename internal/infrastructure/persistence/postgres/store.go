package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/infrastructure/persistence/sqlquery"
)

// saleColumns is the select list matching saleRow.scanTargets.
// Numeric columns come back as text so decimals keep their exact value.
const saleColumns = `id, transaction_id,
	customer_id, customer_name, phone_number, gender, age, customer_region, customer_type,
	product_id, product_name, brand, product_category, tags,
	quantity, price_per_unit::text, discount_percentage::text, total_amount::text, final_amount::text,
	sale_date, payment_method, order_status, delivery_type,
	store_id, store_location, salesperson_id, employee_name`

const (
	selectSales = "SELECT " + saleColumns + " FROM sale_records"
	countSales  = "SELECT COUNT(*) FROM sale_records"

	insertSale = `INSERT INTO sale_records (
	id, transaction_id,
	customer_id, customer_name, phone_number, gender, age, customer_region, customer_type,
	product_id, product_name, brand, product_category, tags,
	quantity, price_per_unit, discount_percentage, total_amount, final_amount,
	sale_date, payment_method, order_status, delivery_type,
	store_id, store_location, salesperson_id, employee_name
) VALUES (
	$1, $2,
	$3, $4, $5, $6, $7, $8, $9,
	$10, $11, $12, $13, $14,
	$15, $16::text::numeric, $17::text::numeric, $18::text::numeric, $19::text::numeric,
	$20, $21, $22, $23,
	$24, $25, $26, $27
) ON CONFLICT (id) DO NOTHING`
)

// Store is the PostgreSQL implementation of sales.Repository.
// Queries are assembled by sqlquery from the backend-neutral filter.
type Store struct {
	pool    *pgxpool.Pool
	builder sqlquery.Builder
}

// Compile-time verification that Store implements the repository port.
var _ sales.Repository = (*Store)(nil)

// NewStore creates a new PostgreSQL store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		builder: sqlquery.NewBuilder(sqlquery.Postgres{}),
	}
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// FindSales returns one window of matching records in the requested order.
func (s *Store) FindSales(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error) {
	query, args, err := s.builder.Select(selectSales, filter, sort, skip, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SaleRecord, error) {
		var r saleRow
		if err := row.Scan(r.scanTargets()...); err != nil {
			return domain.SaleRecord{}, err
		}
		return dbSaleToDomain(r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sale records: %w", err)
	}
	return records, nil
}

// CountSales returns how many records match filter.
func (s *Store) CountSales(ctx context.Context, filter domain.Filter) (int, error) {
	query, args, err := s.builder.Count(countSales, filter)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// InsertSales writes records in a single batch. Records whose ID already
// exists are skipped. Returns the number of rows actually inserted.
func (s *Store) InsertSales(ctx context.Context, records []domain.SaleRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	start := time.Now()

	batch := &pgx.Batch{}
	for _, rec := range records {
		args, err := domainSaleToArgs(rec)
		if err != nil {
			return 0, err
		}
		batch.Queue(insertSale, args...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close insert batch", "error", err)
		}
	}()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert sale record: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	slog.DebugContext(ctx, "inserted sale records",
		"queued", len(records),
		"inserted", inserted,
		"duration_ms", time.Since(start).Milliseconds())
	return inserted, nil
}

// Truncate removes every sale record.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE TABLE sale_records"); err != nil {
		return fmt.Errorf("failed to truncate sale records: %w", err)
	}
	return nil
}
