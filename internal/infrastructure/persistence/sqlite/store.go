// Package sqlite stores sale records in an embedded SQLite database.
// It suits single-node deployments and tests that want real SQL without a server.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go SQLite driver registered as "sqlite"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/infrastructure/persistence/sqlquery"
	"github.com/truestate/sales/internal/ptr"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// maxPrealloc caps the result slice capacity reserved from the page size.
const maxPrealloc = 256

const saleColumns = `id, transaction_id,
	customer_id, customer_name, phone_number, gender, age, customer_region, customer_type,
	product_id, product_name, brand, product_category, tags,
	quantity, price_per_unit, discount_percentage, total_amount, final_amount,
	sale_date, payment_method, order_status, delivery_type,
	store_id, store_location, salesperson_id, employee_name`

const (
	selectSales = "SELECT " + saleColumns + " FROM sale_records"
	countSales  = "SELECT COUNT(*) FROM sale_records"
	insertSale  = "INSERT OR IGNORE INTO sale_records (" + saleColumns + `) VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// Store is the SQLite implementation of sales.Repository.
type Store struct {
	db      *sql.DB
	builder sqlquery.Builder
}

var _ sales.Repository = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
// Use MemoryPath for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewStore(db), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: sqlquery.NewBuilder(sqlquery.SQLite{}),
	}
}

func migrate(ctx context.Context, db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindSales returns one window of matching records in the requested order.
func (s *Store) FindSales(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error) {
	query, args, err := s.builder.Select(selectSales, filter, sort, skip, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]domain.SaleRecord, 0, min(limit, maxPrealloc))
	for rows.Next() {
		rec, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}

// CountSales returns how many records match filter.
func (s *Store) CountSales(ctx context.Context, filter domain.Filter) (int, error) {
	query, args, err := s.builder.Count(countSales, filter)
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return count, nil
}

// InsertSales writes records in one transaction, skipping IDs already stored.
// Returns the number of rows actually inserted.
func (s *Store) InsertSales(ctx context.Context, records []domain.SaleRecord) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback failed", "original_error", err, "rollback_error", rbErr)
			}
			n = 0
			return
		}
		err = tx.Commit()
	}()

	stmt, err := tx.PrepareContext(ctx, insertSale)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args, err := saleArgs(rec)
		if err != nil {
			return 0, err
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sale record %s: %w", rec.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		n += int(affected)
	}
	return n, nil
}

// Truncate removes every sale record.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sale_records"); err != nil {
		return fmt.Errorf("failed to truncate sale records: %w", err)
	}
	return nil
}

func saleArgs(rec domain.SaleRecord) ([]any, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidRecord)
	}
	if rec.Date.IsZero() {
		return nil, fmt.Errorf("%w: record %s has no date", domain.ErrInvalidRecord, rec.ID)
	}

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("%w: tags: %w", domain.ErrInvalidRecord, err)
	}

	return []any{
		rec.ID, rec.TransactionID,
		rec.CustomerID, rec.CustomerName, rec.PhoneNumber, rec.Gender, nullInt(rec.Age), rec.CustomerRegion, rec.CustomerType,
		rec.ProductID, rec.ProductName, rec.Brand, rec.ProductCategory, string(tagsJSON),
		nullInt(rec.Quantity),
		nullDecimal(rec.PricePerUnit), nullDecimal(rec.DiscountPercentage),
		nullDecimal(rec.TotalAmount), nullDecimal(rec.FinalAmount),
		rec.Date.UnixMilli(), rec.PaymentMethod, rec.OrderStatus, rec.DeliveryType,
		rec.StoreID, rec.StoreLocation, rec.SalespersonID, rec.EmployeeName,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(row scanner) (domain.SaleRecord, error) {
	var (
		rec             domain.SaleRecord
		age, quantity   sql.NullInt64
		tags            string
		price, discount sql.NullString
		total, final    sql.NullString
		saleDate        int64
	)
	err := row.Scan(
		&rec.ID, &rec.TransactionID,
		&rec.CustomerID, &rec.CustomerName, &rec.PhoneNumber, &rec.Gender, &age, &rec.CustomerRegion, &rec.CustomerType,
		&rec.ProductID, &rec.ProductName, &rec.Brand, &rec.ProductCategory, &tags,
		&quantity, &price, &discount, &total, &final,
		&saleDate, &rec.PaymentMethod, &rec.OrderStatus, &rec.DeliveryType,
		&rec.StoreID, &rec.StoreLocation, &rec.SalespersonID, &rec.EmployeeName,
	)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("failed to scan sale record: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return domain.SaleRecord{}, fmt.Errorf("invalid tags JSON for record %s: %w", rec.ID, err)
	}
	rec.Age = intFromNull(age)
	rec.Quantity = intFromNull(quantity)
	rec.Date = time.UnixMilli(saleDate).UTC()

	for _, f := range []struct {
		name string
		src  sql.NullString
		dst  **decimal.Decimal
	}{
		{"price_per_unit", price, &rec.PricePerUnit},
		{"discount_percentage", discount, &rec.DiscountPercentage},
		{"total_amount", total, &rec.TotalAmount},
		{"final_amount", final, &rec.FinalAmount},
	} {
		if !f.src.Valid {
			continue
		}
		d, err := decimal.NewFromString(f.src.String)
		if err != nil {
			return domain.SaleRecord{}, fmt.Errorf("invalid %s %q for record %s: %w", f.name, f.src.String, rec.ID, err)
		}
		*f.dst = &d
	}
	return rec, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return ptr.To(int(v.Int64))
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
