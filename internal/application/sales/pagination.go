package sales

import "math"

// Window is the store-facing slice of a result set for one page.
type Window struct {
	Page  int // Effective 1-based page number
	Skip  int // Records to skip
	Limit int // Maximum records to return
}

// Paginate computes the window for page and pageSize, clamping both to >= 1.
// No upper bound is applied; a page past the end simply yields no records.
// Skip saturates at math.MaxInt instead of overflowing.
func Paginate(page, pageSize int) Window {
	limit := max(1, pageSize)
	pageEff := max(1, page)

	skip := math.MaxInt
	if pageEff-1 <= math.MaxInt/limit {
		skip = (pageEff - 1) * limit
	}
	return Window{
		Page:  pageEff,
		Skip:  skip,
		Limit: limit,
	}
}

// TotalPages returns ceil(totalItems / limit), or 0 when there are no items.
func TotalPages(totalItems, limit int) int {
	if totalItems <= 0 || limit <= 0 {
		return 0
	}
	pages := totalItems / limit
	if totalItems%limit != 0 {
		pages++
	}
	return pages
}
