package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/truestate/sales/internal/domain"
)

// RowError reports a CSV row that could not be turned into a sale record.
// The row is skipped; reading can continue.
type RowError struct {
	Row int // 1-based, counting the header row
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// setter assigns one CSV cell to a record.
type setter func(rec *domain.SaleRecord, value string) error

// columnSetters is keyed by the folded header name (lower case, no
// separators), so "customer_name", "CustomerName" and "Customer Name"
// all address the same column.
var columnSetters = map[string]setter{
	"transactionid":  text(func(r *domain.SaleRecord) *string { return &r.TransactionID }),
	"date":           setDate,
	"customerid":     text(func(r *domain.SaleRecord) *string { return &r.CustomerID }),
	"customername":   text(func(r *domain.SaleRecord) *string { return &r.CustomerName }),
	"phonenumber":    text(func(r *domain.SaleRecord) *string { return &r.PhoneNumber }),
	"gender":         text(func(r *domain.SaleRecord) *string { return &r.Gender }),
	"age":            integer(func(r *domain.SaleRecord) **int { return &r.Age }),
	"customerregion": text(func(r *domain.SaleRecord) *string { return &r.CustomerRegion }),
	"customertype":   text(func(r *domain.SaleRecord) *string { return &r.CustomerType }),

	"productid":       text(func(r *domain.SaleRecord) *string { return &r.ProductID }),
	"productname":     text(func(r *domain.SaleRecord) *string { return &r.ProductName }),
	"brand":           text(func(r *domain.SaleRecord) *string { return &r.Brand }),
	"productbrand":    text(func(r *domain.SaleRecord) *string { return &r.Brand }),
	"productcategory": text(func(r *domain.SaleRecord) *string { return &r.ProductCategory }),
	"tags":            setTags,

	"quantity":           integer(func(r *domain.SaleRecord) **int { return &r.Quantity }),
	"priceperunit":       amount(func(r *domain.SaleRecord) **decimal.Decimal { return &r.PricePerUnit }),
	"unitprice":          amount(func(r *domain.SaleRecord) **decimal.Decimal { return &r.PricePerUnit }),
	"discountpercentage": amount(func(r *domain.SaleRecord) **decimal.Decimal { return &r.DiscountPercentage }),
	"totalamount":        amount(func(r *domain.SaleRecord) **decimal.Decimal { return &r.TotalAmount }),
	"finalamount":        amount(func(r *domain.SaleRecord) **decimal.Decimal { return &r.FinalAmount }),

	"paymentmethod":     text(func(r *domain.SaleRecord) *string { return &r.PaymentMethod }),
	"orderstatus":       text(func(r *domain.SaleRecord) *string { return &r.OrderStatus }),
	"transactionstatus": text(func(r *domain.SaleRecord) *string { return &r.OrderStatus }),
	"deliverytype":      text(func(r *domain.SaleRecord) *string { return &r.DeliveryType }),
	"deliverystatus":    text(func(r *domain.SaleRecord) *string { return &r.DeliveryType }),
	"storeid":           text(func(r *domain.SaleRecord) *string { return &r.StoreID }),
	"storelocation":     text(func(r *domain.SaleRecord) *string { return &r.StoreLocation }),
	"salespersonid":     text(func(r *domain.SaleRecord) *string { return &r.SalespersonID }),
	"employeeid":        text(func(r *domain.SaleRecord) *string { return &r.SalespersonID }),
	"employeename":      text(func(r *domain.SaleRecord) *string { return &r.EmployeeName }),
}

// dateLayouts are tried in order. Day-first forms accept one or two digit
// day and month.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2006-01-02",
	time.RFC3339,
}

// Reader decodes sale records from CSV with a header row.
// Columns with unknown headers are ignored.
type Reader struct {
	csv     *csv.Reader
	setters []setter // by column index, nil for ignored columns
	row     int
}

// NewReader reads the header row from r and prepares column mapping.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	setters := make([]setter, len(header))
	mapped := 0
	hasDate := false
	for i, name := range header {
		key := foldHeader(name)
		if s, ok := columnSetters[key]; ok {
			setters[i] = s
			mapped++
			hasDate = hasDate || key == "date"
		}
	}
	if mapped == 0 {
		return nil, errors.New("csv header has no recognised columns")
	}
	if !hasDate {
		return nil, errors.New("csv header has no date column")
	}

	return &Reader{csv: cr, setters: setters, row: 1}, nil
}

// Next returns the next record. It returns io.EOF after the last row and a
// *RowError for rows that should be skipped.
func (r *Reader) Next() (domain.SaleRecord, error) {
	cells, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.SaleRecord{}, io.EOF
		}
		r.row++
		if errors.Is(err, csv.ErrFieldCount) {
			return domain.SaleRecord{}, &RowError{Row: r.row, Err: err}
		}
		return domain.SaleRecord{}, fmt.Errorf("failed to read csv: %w", err)
	}
	r.row++

	var rec domain.SaleRecord
	for i, value := range cells {
		if r.setters[i] == nil {
			continue
		}
		if err := r.setters[i](&rec, strings.TrimSpace(value)); err != nil {
			return domain.SaleRecord{}, &RowError{Row: r.row, Err: err}
		}
	}
	if rec.Date.IsZero() {
		return domain.SaleRecord{}, &RowError{Row: r.row, Err: errors.New("missing date")}
	}
	return rec, nil
}

func foldHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch c {
		case '_', ' ', '-':
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func text(field func(*domain.SaleRecord) *string) setter {
	return func(rec *domain.SaleRecord, value string) error {
		*field(rec) = value
		return nil
	}
}

// integer leaves the field absent when the cell is empty or not an integer.
func integer(field func(*domain.SaleRecord) **int) setter {
	return func(rec *domain.SaleRecord, value string) error {
		if n, err := strconv.Atoi(value); err == nil {
			*field(rec) = &n
		}
		return nil
	}
}

// amount leaves the field absent when the cell is empty or not a number.
func amount(field func(*domain.SaleRecord) **decimal.Decimal) setter {
	return func(rec *domain.SaleRecord, value string) error {
		if d, err := decimal.NewFromString(value); err == nil {
			*field(rec) = &d
		}
		return nil
	}
}

func setTags(rec *domain.SaleRecord, value string) error {
	var tags []string
	for tag := range strings.SplitSeq(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	rec.Tags = tags
	return nil
}

func setDate(rec *domain.SaleRecord, value string) error {
	if value == "" {
		return errors.New("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			rec.Date = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", value)
}
