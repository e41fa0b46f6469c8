// Package sqlquery translates the backend-neutral sales filter and sort into
// parameterized SQL. Column names come from a fixed field map; request values
// only ever travel as bind arguments.
package sqlquery

import (
	"fmt"
	"strings"

	"github.com/truestate/sales/internal/domain"
)

// Columns maps filterable and sortable fields to sale_records columns.
var Columns = map[domain.Field]string{
	domain.FieldCustomerName:    "customer_name",
	domain.FieldPhoneNumber:     "phone_number",
	domain.FieldGender:          "gender",
	domain.FieldAge:             "age",
	domain.FieldCustomerRegion:  "customer_region",
	domain.FieldProductCategory: "product_category",
	domain.FieldTags:            "tags",
	domain.FieldPaymentMethod:   "payment_method",
	domain.FieldDate:            "sale_date",
	domain.FieldQuantity:        "quantity",
}

// Builder assembles SELECT and COUNT statements for one dialect.
type Builder struct {
	dialect Dialect
}

// NewBuilder creates a builder for dialect.
func NewBuilder(dialect Dialect) Builder {
	return Builder{dialect: dialect}
}

// args accumulates bind arguments and hands out placeholders in order.
type args struct {
	dialect Dialect
	values  []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return a.dialect.Placeholder(len(a.values))
}

// Select returns "<base> [WHERE ...] ORDER BY ... LIMIT ... OFFSET ..." and its arguments.
func (b Builder) Select(base string, filter domain.Filter, sort domain.Sort, skip, limit int) (string, []any, error) {
	a := &args{dialect: b.dialect}

	parts := []string{base}

	where, err := b.where(a, filter)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		parts = append(parts, where)
	}

	orderBy, err := b.OrderBy(sort)
	if err != nil {
		return "", nil, err
	}
	parts = append(parts, orderBy)

	parts = append(parts, fmt.Sprintf("LIMIT %s OFFSET %s", a.add(limit), a.add(skip)))

	return strings.Join(parts, " "), a.values, nil
}

// Count returns "<base> [WHERE ...]" and its arguments. No ordering or paging is applied.
func (b Builder) Count(base string, filter domain.Filter) (string, []any, error) {
	a := &args{dialect: b.dialect}

	where, err := b.where(a, filter)
	if err != nil {
		return "", nil, err
	}
	if where == "" {
		return base, nil, nil
	}
	return base + " " + where, a.values, nil
}

// Where renders the WHERE clause for filter, or "" for an empty filter.
func (b Builder) Where(filter domain.Filter) (string, []any, error) {
	a := &args{dialect: b.dialect}
	where, err := b.where(a, filter)
	if err != nil {
		return "", nil, err
	}
	return where, a.values, nil
}

// OrderBy renders the ORDER BY clause for sort. Missing values order lowest.
func (b Builder) OrderBy(sort domain.Sort) (string, error) {
	column, err := column(sort.Field)
	if err != nil {
		return "", err
	}
	if sort.Descending {
		return fmt.Sprintf("ORDER BY %s DESC NULLS LAST", column), nil
	}
	return fmt.Sprintf("ORDER BY %s ASC NULLS FIRST", column), nil
}

func (b Builder) where(a *args, filter domain.Filter) (string, error) {
	if filter.IsEmpty() {
		return "", nil
	}

	conditions := make([]string, 0, len(filter.Clauses))
	for _, clause := range filter.Clauses {
		condition, err := b.condition(a, clause)
		if err != nil {
			return "", err
		}
		if condition != "" {
			conditions = append(conditions, condition)
		}
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), nil
}

func (b Builder) condition(a *args, clause domain.Clause) (string, error) {
	switch clause.Kind {
	case domain.ClauseContains:
		if len(clause.Fields) == 0 {
			return "", fmt.Errorf("%w: contains clause without fields", domain.ErrUnsupportedClause)
		}
		alternatives := make([]string, 0, len(clause.Fields))
		for _, field := range clause.Fields {
			col, err := column(field)
			if err != nil {
				return "", err
			}
			// One argument per alternative: positional markers cannot be reused.
			alternatives = append(alternatives, b.dialect.ContainsFold(col, a.add(clause.Text)))
		}
		return "(" + strings.Join(alternatives, " OR ") + ")", nil

	case domain.ClauseIn:
		col, err := column(clause.Field)
		if err != nil {
			return "", err
		}
		if len(clause.Values) == 0 {
			return "", nil
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(b.params(a, clause.Values), ", ")), nil

	case domain.ClauseOverlaps:
		if clause.Field != domain.FieldTags {
			return "", fmt.Errorf("%w: %s is not set-valued", domain.ErrUnsupportedField, clause.Field)
		}
		if len(clause.Values) == 0 {
			return "", nil
		}
		return b.dialect.Overlaps(Columns[domain.FieldTags], b.params(a, clause.Values)), nil

	case domain.ClauseIntRange:
		col, err := column(clause.Field)
		if err != nil {
			return "", err
		}
		var bounds []string
		if clause.MinInt != nil {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", col, a.add(*clause.MinInt)))
		}
		if clause.MaxInt != nil {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", col, a.add(*clause.MaxInt)))
		}
		return strings.Join(bounds, " AND "), nil

	case domain.ClauseTimeRange:
		if clause.Field != domain.FieldDate {
			return "", fmt.Errorf("%w: %s is not a timestamp", domain.ErrUnsupportedField, clause.Field)
		}
		col := Columns[domain.FieldDate]
		var bounds []string
		if clause.MinTime != nil {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", col, a.add(b.dialect.TimeValue(*clause.MinTime))))
		}
		if clause.MaxTime != nil {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", col, a.add(b.dialect.TimeValue(*clause.MaxTime))))
		}
		return strings.Join(bounds, " AND "), nil

	default:
		return "", fmt.Errorf("%w: kind %d", domain.ErrUnsupportedClause, clause.Kind)
	}
}

func (b Builder) params(a *args, values []string) []string {
	params := make([]string, len(values))
	for i, v := range values {
		params[i] = a.add(v)
	}
	return params
}

func column(field domain.Field) (string, error) {
	col, ok := Columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedField, field)
	}
	return col, nil
}
