package sqlquery

import (
	"fmt"
	"strings"
	"time"
)

// Dialect renders the SQL fragments that differ between database engines.
type Dialect interface {
	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// ContainsFold returns a condition true when column contains param, ignoring case.
	ContainsFold(column, param string) string
	// Overlaps returns a condition true when the set-valued column shares an element with params.
	Overlaps(column string, params []string) string
	// TimeValue converts a timestamp to the value stored in timestamp columns.
	TimeValue(t time.Time) any
}

// Postgres renders PostgreSQL syntax. Tags are a text[] column.
type Postgres struct{}

func (Postgres) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (Postgres) ContainsFold(column, param string) string {
	return fmt.Sprintf("strpos(lower(%s), lower(%s)) > 0", column, param)
}

func (Postgres) Overlaps(column string, params []string) string {
	return fmt.Sprintf("%s && ARRAY[%s]::text[]", column, strings.Join(params, ", "))
}

func (Postgres) TimeValue(t time.Time) any {
	return t.UTC()
}

// SQLite renders SQLite syntax. Tags are stored as a JSON array of strings
// and timestamps as unix milliseconds.
type SQLite struct{}

func (SQLite) Placeholder(int) string {
	return "?"
}

func (SQLite) ContainsFold(column, param string) string {
	return fmt.Sprintf("instr(lower(%s), lower(%s)) > 0", column, param)
}

func (SQLite) Overlaps(column string, params []string) string {
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value IN (%s))", column, strings.Join(params, ", "))
}

func (SQLite) TimeValue(t time.Time) any {
	return t.UnixMilli()
}
