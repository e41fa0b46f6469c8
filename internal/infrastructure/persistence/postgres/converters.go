package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/ptr"
)

// === pgtype Conversion Helpers ===

// uuidToPgtype converts google/uuid.UUID to pgtype.UUID.
func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// intPtrToPgtype converts *int to pgtype.Int8, NULL for nil.
func intPtrToPgtype(v *int) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: int64(*v), Valid: true}
}

// pgtypeToIntPtr converts pgtype.Int8 to *int (nil if NULL).
func pgtypeToIntPtr(v pgtype.Int8) *int {
	if !v.Valid {
		return nil
	}
	return ptr.To(int(v.Int64))
}

// decimalToPgtype renders a decimal as text for a ::text::numeric cast.
// Going through text keeps the exact value without a float round trip.
func decimalToPgtype(d *decimal.Decimal) pgtype.Text {
	if d == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.String(), Valid: true}
}

// pgtypeToDecimal parses a numeric column selected as text.
func pgtypeToDecimal(column string, v pgtype.Text) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", column, v.String, err)
	}
	return &d, nil
}

// tagsToDB never returns nil so the NOT NULL tags column always gets an array.
func tagsToDB(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// === Sale Record Conversions ===

// saleRow mirrors one sale_records row as selected by saleColumns.
type saleRow struct {
	ID                 pgtype.UUID
	TransactionID      string
	CustomerID         string
	CustomerName       string
	PhoneNumber        string
	Gender             string
	Age                pgtype.Int8
	CustomerRegion     string
	CustomerType       string
	ProductID          string
	ProductName        string
	Brand              string
	ProductCategory    string
	Tags               []string
	Quantity           pgtype.Int8
	PricePerUnit       pgtype.Text
	DiscountPercentage pgtype.Text
	TotalAmount        pgtype.Text
	FinalAmount        pgtype.Text
	SaleDate           pgtype.Timestamptz
	PaymentMethod      string
	OrderStatus        string
	DeliveryType       string
	StoreID            string
	StoreLocation      string
	SalespersonID      string
	EmployeeName       string
}

// scanTargets returns pointers in saleColumns order.
func (r *saleRow) scanTargets() []any {
	return []any{
		&r.ID, &r.TransactionID,
		&r.CustomerID, &r.CustomerName, &r.PhoneNumber, &r.Gender, &r.Age, &r.CustomerRegion, &r.CustomerType,
		&r.ProductID, &r.ProductName, &r.Brand, &r.ProductCategory, &r.Tags,
		&r.Quantity, &r.PricePerUnit, &r.DiscountPercentage, &r.TotalAmount, &r.FinalAmount,
		&r.SaleDate, &r.PaymentMethod, &r.OrderStatus, &r.DeliveryType,
		&r.StoreID, &r.StoreLocation, &r.SalespersonID, &r.EmployeeName,
	}
}

func dbSaleToDomain(r saleRow) (domain.SaleRecord, error) {
	rec := domain.SaleRecord{
		ID:              pgtypeToUUIDString(r.ID),
		TransactionID:   r.TransactionID,
		CustomerID:      r.CustomerID,
		CustomerName:    r.CustomerName,
		PhoneNumber:     r.PhoneNumber,
		Gender:          r.Gender,
		Age:             pgtypeToIntPtr(r.Age),
		CustomerRegion:  r.CustomerRegion,
		CustomerType:    r.CustomerType,
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		Brand:           r.Brand,
		ProductCategory: r.ProductCategory,
		Tags:            r.Tags,
		Quantity:        pgtypeToIntPtr(r.Quantity),
		Date:            pgtypeToTime(r.SaleDate),
		PaymentMethod:   r.PaymentMethod,
		OrderStatus:     r.OrderStatus,
		DeliveryType:    r.DeliveryType,
		StoreID:         r.StoreID,
		StoreLocation:   r.StoreLocation,
		SalespersonID:   r.SalespersonID,
		EmployeeName:    r.EmployeeName,
	}

	var err error
	if rec.PricePerUnit, err = pgtypeToDecimal("price_per_unit", r.PricePerUnit); err != nil {
		return domain.SaleRecord{}, err
	}
	if rec.DiscountPercentage, err = pgtypeToDecimal("discount_percentage", r.DiscountPercentage); err != nil {
		return domain.SaleRecord{}, err
	}
	if rec.TotalAmount, err = pgtypeToDecimal("total_amount", r.TotalAmount); err != nil {
		return domain.SaleRecord{}, err
	}
	if rec.FinalAmount, err = pgtypeToDecimal("final_amount", r.FinalAmount); err != nil {
		return domain.SaleRecord{}, err
	}
	return rec, nil
}

// domainSaleToArgs returns the insertSale arguments for rec.
func domainSaleToArgs(rec domain.SaleRecord) ([]any, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q: %w", domain.ErrInvalidRecord, rec.ID, err)
	}
	if rec.Date.IsZero() {
		return nil, fmt.Errorf("%w: record %s has no date", domain.ErrInvalidRecord, rec.ID)
	}

	return []any{
		uuidToPgtype(id), rec.TransactionID,
		rec.CustomerID, rec.CustomerName, rec.PhoneNumber, rec.Gender, intPtrToPgtype(rec.Age), rec.CustomerRegion, rec.CustomerType,
		rec.ProductID, rec.ProductName, rec.Brand, rec.ProductCategory, tagsToDB(rec.Tags),
		intPtrToPgtype(rec.Quantity),
		decimalToPgtype(rec.PricePerUnit), decimalToPgtype(rec.DiscountPercentage),
		decimalToPgtype(rec.TotalAmount), decimalToPgtype(rec.FinalAmount),
		pgtype.Timestamptz{Time: rec.Date.UTC(), Valid: true},
		rec.PaymentMethod, rec.OrderStatus, rec.DeliveryType,
		rec.StoreID, rec.StoreLocation, rec.SalespersonID, rec.EmployeeName,
	}, nil
}
