// Package table describes queries and rows exchanged with the tabular data
// gateway. Every gateway adapter interprets the same Query shape.
package table

import (
	"fmt"
	"regexp"
)

// Table names used by the application.
const (
	Events         = "events"
	Registrations  = "registrations"
	Admins         = "admins"
	AdminLoginLogs = "admin_login_logs"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether name is a plain lower-case SQL identifier.
// Adapters reject anything else before it reaches a query string.
func ValidIdent(name string) bool { return identRe.MatchString(name) }

// Filter is an equality predicate (column = value).
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter { return Filter{Column: column, Value: value} }

// Order sorts by Column.
type Order struct {
	Column string
	Desc   bool
}

// CountEmbed attaches the number of rows in Relation whose ChildKey equals
// the parent row's ParentKey. Results are embedded under Relation as
// [{"count": N}], which is the shape the hosted data API returns.
type CountEmbed struct {
	Relation  string
	ParentKey string
	ChildKey  string
}

// Query selects rows from a table.
type Query struct {
	Table string
	// Columns restricts the result; empty means all columns.
	Columns []string
	Filters []Filter
	Order   []Order
	// Limit caps the result size when positive.
	Limit  int
	Counts []CountEmbed
}

// Validate checks every identifier in the query.
func (q Query) Validate() error {
	if !ValidIdent(q.Table) {
		return fmt.Errorf("invalid table name %q", q.Table)
	}
	for _, c := range q.Columns {
		if !ValidIdent(c) {
			return fmt.Errorf("invalid column %q", c)
		}
	}
	if err := ValidateFilters(q.Filters); err != nil {
		return err
	}
	for _, o := range q.Order {
		if !ValidIdent(o.Column) {
			return fmt.Errorf("invalid order column %q", o.Column)
		}
	}
	for _, ce := range q.Counts {
		if !ValidIdent(ce.Relation) || !ValidIdent(ce.ParentKey) || !ValidIdent(ce.ChildKey) {
			return fmt.Errorf("invalid count embed %+v", ce)
		}
	}
	return nil
}

// ValidateFilters checks filter column names.
func ValidateFilters(filters []Filter) error {
	for _, f := range filters {
		if !ValidIdent(f.Column) {
			return fmt.Errorf("invalid filter column %q", f.Column)
		}
	}
	return nil
}

// ValidateRow checks every column name of a row to be written.
func ValidateRow(row Row) error {
	if len(row) == 0 {
		return fmt.Errorf("empty row")
	}
	for c := range row {
		if !ValidIdent(c) {
			return fmt.Errorf("invalid column %q", c)
		}
	}
	return nil
}

// ValidateMutation checks the target of an update or delete. At least one
// filter is required so a mistake can never touch a whole table.
func ValidateMutation(tbl string, filters []Filter) error {
	if !ValidIdent(tbl) {
		return fmt.Errorf("invalid table name %q", tbl)
	}
	if len(filters) == 0 {
		return fmt.Errorf("refusing to modify %s without a filter", tbl)
	}
	return ValidateFilters(filters)
}

// ValidateUpsert checks an upsert. Every conflict column must be in the row.
func ValidateUpsert(tbl string, row Row, onConflict []string) error {
	if !ValidIdent(tbl) {
		return fmt.Errorf("invalid table name %q", tbl)
	}
	if err := ValidateRow(row); err != nil {
		return err
	}
	if len(onConflict) == 0 {
		return fmt.Errorf("upsert into %s needs conflict columns", tbl)
	}
	for _, k := range onConflict {
		if _, ok := row[k]; !ok {
			return fmt.Errorf("conflict column %q missing from row", k)
		}
	}
	return nil
}
