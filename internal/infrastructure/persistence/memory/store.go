// Package memory provides an in-process sales store that evaluates the
// backend-neutral filter directly over a slice of records.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
)

// Store is a thread-safe in-memory sales store.
// Records keep insertion order, which is the native order for sort ties.
type Store struct {
	mu      sync.RWMutex
	records []domain.SaleRecord
	ids     map[string]struct{}
}

// compile-time assertion that Store implements sales.Repository
var _ sales.Repository = (*Store)(nil)

// NewStore creates a store holding records.
func NewStore(records ...domain.SaleRecord) *Store {
	s := &Store{ids: make(map[string]struct{})}
	for _, rec := range records {
		s.add(rec)
	}
	return s
}

func (s *Store) add(rec domain.SaleRecord) bool {
	if rec.ID != "" {
		if _, exists := s.ids[rec.ID]; exists {
			return false
		}
		s.ids[rec.ID] = struct{}{}
	}
	s.records = append(s.records, rec)
	return true
}

// InsertSales appends records, skipping IDs already present.
// Returns the number of records added.
func (s *Store) InsertSales(ctx context.Context, records []domain.SaleRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, rec := range records {
		if s.add(rec) {
			inserted++
		}
	}
	return inserted, nil
}

// Truncate removes all records.
func (s *Store) Truncate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.ids = make(map[string]struct{})
	return nil
}

// Close is a no-op; the store holds no external resources.
func (s *Store) Close() error {
	return nil
}

// FindSales returns one page of matching records.
func (s *Store) FindSales(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched, err := s.match(filter)
	if err != nil {
		return nil, err
	}

	cmpFn, err := comparator(sort)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(matched, cmpFn)

	if skip >= len(matched) {
		return []domain.SaleRecord{}, nil
	}
	end := len(matched)
	if limit < end-skip {
		end = skip + limit
	}
	return matched[skip:end], nil
}

// CountSales returns the number of matching records.
func (s *Store) CountSales(ctx context.Context, filter domain.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	matched, err := s.match(filter)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// match returns a copy of the records satisfying every clause of filter.
func (s *Store) match(filter domain.Filter) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SaleRecord, 0, len(s.records))
	for _, rec := range s.records {
		ok, err := matchAll(rec, filter.Clauses)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matchAll(rec domain.SaleRecord, clauses []domain.Clause) (bool, error) {
	for _, clause := range clauses {
		ok, err := matchClause(rec, clause)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchClause(rec domain.SaleRecord, clause domain.Clause) (bool, error) {
	switch clause.Kind {
	case domain.ClauseContains:
		needle := strings.ToLower(clause.Text)
		for _, field := range clause.Fields {
			value, err := stringField(rec, field)
			if err != nil {
				return false, err
			}
			if strings.Contains(strings.ToLower(value), needle) {
				return true, nil
			}
		}
		return false, nil

	case domain.ClauseIn:
		value, err := stringField(rec, clause.Field)
		if err != nil {
			return false, err
		}
		if len(clause.Values) == 0 {
			return true, nil
		}
		return slices.Contains(clause.Values, value), nil

	case domain.ClauseOverlaps:
		if clause.Field != domain.FieldTags {
			return false, fmt.Errorf("%w: %s is not set-valued", domain.ErrUnsupportedField, clause.Field)
		}
		if len(clause.Values) == 0 {
			return true, nil
		}
		for _, tag := range rec.Tags {
			if slices.Contains(clause.Values, tag) {
				return true, nil
			}
		}
		return false, nil

	case domain.ClauseIntRange:
		value, err := intField(rec, clause.Field)
		if err != nil {
			return false, err
		}
		if clause.MinInt == nil && clause.MaxInt == nil {
			return true, nil
		}
		// Records without a value never satisfy a range.
		if value == nil {
			return false, nil
		}
		if clause.MinInt != nil && *value < *clause.MinInt {
			return false, nil
		}
		if clause.MaxInt != nil && *value > *clause.MaxInt {
			return false, nil
		}
		return true, nil

	case domain.ClauseTimeRange:
		if clause.Field != domain.FieldDate {
			return false, fmt.Errorf("%w: %s is not a timestamp", domain.ErrUnsupportedField, clause.Field)
		}
		if clause.MinTime != nil && rec.Date.Before(*clause.MinTime) {
			return false, nil
		}
		if clause.MaxTime != nil && rec.Date.After(*clause.MaxTime) {
			return false, nil
		}
		return true, nil

	default:
		return false, fmt.Errorf("%w: kind %d", domain.ErrUnsupportedClause, clause.Kind)
	}
}

func stringField(rec domain.SaleRecord, field domain.Field) (string, error) {
	switch field {
	case domain.FieldCustomerName:
		return rec.CustomerName, nil
	case domain.FieldPhoneNumber:
		return rec.PhoneNumber, nil
	case domain.FieldGender:
		return rec.Gender, nil
	case domain.FieldCustomerRegion:
		return rec.CustomerRegion, nil
	case domain.FieldProductCategory:
		return rec.ProductCategory, nil
	case domain.FieldPaymentMethod:
		return rec.PaymentMethod, nil
	default:
		return "", fmt.Errorf("%w: %s is not a text field", domain.ErrUnsupportedField, field)
	}
}

func intField(rec domain.SaleRecord, field domain.Field) (*int, error) {
	switch field {
	case domain.FieldAge:
		return rec.Age, nil
	case domain.FieldQuantity:
		return rec.Quantity, nil
	default:
		return nil, fmt.Errorf("%w: %s is not an integer field", domain.ErrUnsupportedField, field)
	}
}

// comparator builds an ordering for sort. Missing integers order lowest,
// matching the SQL adapters.
func comparator(sort domain.Sort) (func(a, b domain.SaleRecord) int, error) {
	var base func(a, b domain.SaleRecord) int

	switch sort.Field {
	case domain.FieldDate:
		base = func(a, b domain.SaleRecord) int { return compareTime(a.Date, b.Date) }
	case domain.FieldCustomerName:
		base = func(a, b domain.SaleRecord) int { return strings.Compare(a.CustomerName, b.CustomerName) }
	case domain.FieldQuantity:
		base = func(a, b domain.SaleRecord) int { return compareOptional(a.Quantity, b.Quantity) }
	default:
		return nil, fmt.Errorf("%w: cannot sort by %s", domain.ErrUnsupportedField, sort.Field)
	}

	if sort.Descending {
		return func(a, b domain.SaleRecord) int { return -base(a, b) }, nil
	}
	return base, nil
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}
