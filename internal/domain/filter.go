package domain

import "time"

// ClauseKind identifies the matching semantics of a Clause.
type ClauseKind int

const (
	// ClauseContains matches when any of Fields contains Text, ignoring case.
	ClauseContains ClauseKind = iota + 1
	// ClauseIn matches when the scalar Field equals one of Values.
	ClauseIn
	// ClauseOverlaps matches when the set-valued Field shares at least one element with Values.
	ClauseOverlaps
	// ClauseIntRange matches when the integer Field lies within the set bounds.
	ClauseIntRange
	// ClauseTimeRange matches when the timestamp Field lies within the set bounds.
	ClauseTimeRange
)

// Clause is one backend-neutral predicate over SaleRecord fields.
// Only the members relevant to Kind are populated; range bounds are inclusive
// and a nil bound is open.
type Clause struct {
	Kind   ClauseKind
	Field  Field   // Target field for In, Overlaps and range clauses
	Fields []Field // Alternatives for Contains

	Text   string   // Contains
	Values []string // In, Overlaps

	MinInt  *int // IntRange
	MaxInt  *int
	MinTime *time.Time // TimeRange
	MaxTime *time.Time
}

// Filter is a conjunction of clauses. An empty Filter matches every record.
type Filter struct {
	Clauses []Clause
}

// IsEmpty reports whether the filter imposes no constraint.
func (f Filter) IsEmpty() bool {
	return len(f.Clauses) == 0
}

// Sort is a single-key backend sort specification.
// Ties are left in store-native order.
type Sort struct {
	Field      Field
	Descending bool
}
