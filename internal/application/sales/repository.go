package sales

import (
	"context"

	"github.com/truestate/sales/internal/domain"
)

// Repository defines the read operations the query pipeline needs from a sales store.
// Implementations translate the backend-neutral filter and sort into their native
// query form. Both methods are read-only and safe to call concurrently.
type Repository interface {
	// FindSales returns the records matching filter, ordered by sort,
	// skipping the first skip matches and returning at most limit records.
	FindSales(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error)

	// CountSales returns the total number of records matching filter.
	CountSales(ctx context.Context, filter domain.Filter) (int, error)
}
