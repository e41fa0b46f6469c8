package domain

import "time"

// QueryOptions is the validated, strongly-typed form of a sales query.
// It is built once per request by the options normalizer and never mutated.
//
// Common use cases:
//   - "Recent electronics sales": ProductCategories=[Electronics], default sort
//   - "Customers named Ravi": Search="ravi"
//   - "Largest orders first": SortBy=quantity, SortOrder=desc
type QueryOptions struct {
	// Optional filters (nil or empty = no constraint)
	Search            *string    // Case-insensitive substring of customer name or phone number
	Regions           []string   // Customer region in set
	Genders           []string   // Gender in set
	ProductCategories []string   // Product category in set
	Tags              []string   // At least one record tag in set
	PaymentMethods    []string   // Payment method in set
	AgeMin            *int       // Inclusive lower age bound
	AgeMax            *int       // Inclusive upper age bound
	DateFrom          *time.Time // Inclusive lower date bound
	DateTo            *time.Time // Inclusive upper date bound

	// Sorting; values outside the enums are resolved by the sort compiler
	SortBy    SortField
	SortOrder SortOrder

	// Pagination (both >= 1 after normalization)
	Page     int
	PageSize int
}

// HasInvalidAgeRange reports whether both age bounds are set and inverted.
func (o QueryOptions) HasInvalidAgeRange() bool {
	return o.AgeMin != nil && o.AgeMax != nil && *o.AgeMin > *o.AgeMax
}

// SalesPage is the paginated result envelope for a sales query.
// Navigation fields are derived from TotalItems and PageSize and are never persisted.
type SalesPage struct {
	Items        []SaleRecord // Records on this page, at most PageSize
	Page         int          // Effective page number (1-based)
	PageSize     int          // Effective page size
	TotalItems   int          // Total matching records across all pages
	TotalPages   int          // ceil(TotalItems / PageSize)
	HasNextPage  bool         // Page < TotalPages
	HasPrevPage  bool         // Page > 1
	InvalidRange bool         // Age bounds were inverted; the store was not queried
}
