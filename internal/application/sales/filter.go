package sales

import (
	"slices"

	"github.com/truestate/sales/internal/domain"
)

// searchFields are matched by the free-text search clause.
var searchFields = []domain.Field{domain.FieldCustomerName, domain.FieldPhoneNumber}

// CompileFilter builds the conjunctive filter for opts.
// Options that are absent or empty contribute no clause, so an empty
// QueryOptions compiles to an empty Filter.
//
// An inverted age range is not checked here; the service short-circuits
// such queries before compiling.
func CompileFilter(opts domain.QueryOptions) domain.Filter {
	var clauses []domain.Clause

	if opts.Search != nil && *opts.Search != "" {
		clauses = append(clauses, domain.Clause{
			Kind:   domain.ClauseContains,
			Fields: slices.Clone(searchFields),
			Text:   *opts.Search,
		})
	}

	clauses = appendIn(clauses, domain.FieldCustomerRegion, opts.Regions)
	clauses = appendIn(clauses, domain.FieldGender, opts.Genders)

	if opts.AgeMin != nil || opts.AgeMax != nil {
		clauses = append(clauses, domain.Clause{
			Kind:   domain.ClauseIntRange,
			Field:  domain.FieldAge,
			MinInt: opts.AgeMin,
			MaxInt: opts.AgeMax,
		})
	}

	clauses = appendIn(clauses, domain.FieldProductCategory, opts.ProductCategories)

	if len(opts.Tags) > 0 {
		clauses = append(clauses, domain.Clause{
			Kind:   domain.ClauseOverlaps,
			Field:  domain.FieldTags,
			Values: slices.Clone(opts.Tags),
		})
	}

	clauses = appendIn(clauses, domain.FieldPaymentMethod, opts.PaymentMethods)

	if opts.DateFrom != nil || opts.DateTo != nil {
		clauses = append(clauses, domain.Clause{
			Kind:    domain.ClauseTimeRange,
			Field:   domain.FieldDate,
			MinTime: opts.DateFrom,
			MaxTime: opts.DateTo,
		})
	}

	return domain.Filter{Clauses: clauses}
}

func appendIn(clauses []domain.Clause, field domain.Field, values []string) []domain.Clause {
	if len(values) == 0 {
		return clauses
	}
	return append(clauses, domain.Clause{
		Kind:   domain.ClauseIn,
		Field:  field,
		Values: slices.Clone(values),
	})
}

// sortFields maps accepted sort keys to record fields.
var sortFields = map[domain.SortField]domain.Field{
	domain.SortByDate:         domain.FieldDate,
	domain.SortByQuantity:     domain.FieldQuantity,
	domain.SortByCustomerName: domain.FieldCustomerName,
}

// CompileSort maps a sort key and direction to a Sort.
// Unknown keys sort by date; any direction other than asc sorts descending.
// No secondary key is added, so ties keep the store's native order.
func CompileSort(by domain.SortField, order domain.SortOrder) domain.Sort {
	field, ok := sortFields[by]
	if !ok {
		field = domain.FieldDate
	}
	return domain.Sort{
		Field:      field,
		Descending: order != domain.SortAsc,
	}
}
