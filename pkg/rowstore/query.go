// Package rowstore is the row-query capability every page reads through:
// select by table with equality/inequality filters, ordering and a limit.
package rowstore

import (
	"context"
	"fmt"
	"regexp"
)

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

type Order struct {
	Column    string
	Ascending bool
}

// Query describes one select. MaxRows of zero means no limit.
type Query struct {
	Table   string
	Filters []Filter
	OrderBy *Order
	MaxRows int
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

func (q Query) Eq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpEq, Value: value})
	return q
}

func (q Query) Neq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpNeq, Value: value})
	return q
}

func (q Query) Order(column string, ascending bool) Query {
	q.OrderBy = &Order{Column: column, Ascending: ascending}
	return q
}

func (q Query) Limit(n int) Query {
	q.MaxRows = n
	return q
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate rejects identifiers that cannot be a table or column name.
// Both drivers splice identifiers into the request, so this runs first.
func (q Query) Validate() error {
	if !identRe.MatchString(q.Table) {
		return fmt.Errorf("invalid table %q", q.Table)
	}
	for _, f := range q.Filters {
		if !identRe.MatchString(f.Column) {
			return fmt.Errorf("invalid column %q", f.Column)
		}
		if f.Op != OpEq && f.Op != OpNeq {
			return fmt.Errorf("invalid operator %q", f.Op)
		}
	}
	if q.OrderBy != nil && !identRe.MatchString(q.OrderBy.Column) {
		return fmt.Errorf("invalid order column %q", q.OrderBy.Column)
	}
	if q.MaxRows < 0 {
		return fmt.Errorf("invalid limit %d", q.MaxRows)
	}
	return nil
}

// Store is implemented by the REST and sqlite drivers.
type Store interface {
	// Select decodes every matching row into dest, a pointer to a slice.
	Select(ctx context.Context, q Query, dest any) error
	// Single decodes exactly one row into dest. It returns ErrNoRows or
	// ErrMultipleRows when the match count is not one.
	Single(ctx context.Context, q Query, dest any) error
	// Increment adds one to an integer column of the row with the given id
	// and returns the new value.
	Increment(ctx context.Context, table, id, column string) (int, error)
	Insert(ctx context.Context, table string, row any) error
	Close() error
}
