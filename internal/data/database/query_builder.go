// Package database builds parameterized PostgreSQL statements for the
// generic table gateway. Identifiers are validated by the caller and quoted
// here; values are always passed as arguments.
package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/eventdesk/internal/domain/table"
)

// Statement is a SQL string and its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

func qualified(parts ...string) string { return pgx.Identifier(parts).Sanitize() }

// sortedColumns returns row keys in a stable order so generated SQL is deterministic.
func sortedColumns(row table.Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) param(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) where(alias string, filters []table.Filter) {
	if len(filters) == 0 {
		return
	}
	conds := make([]string, len(filters))
	for i, f := range filters {
		col := ident(f.Column)
		if alias != "" {
			col = qualified(alias, f.Column)
		}
		if f.Value == nil {
			conds[i] = col + " IS NULL"
			continue
		}
		conds[i] = col + " = " + b.param(f.Value)
	}
	b.sb.WriteString(" WHERE ")
	b.sb.WriteString(strings.Join(conds, " AND "))
}

func (b *builder) statement() Statement {
	return Statement{SQL: b.sb.String(), Args: b.args}
}

// countEmbed renders a correlated count as a JSON array so the column has the
// same [{"count": N}] shape the hosted data API returns.
func countEmbed(alias string, ce table.CountEmbed) string {
	return fmt.Sprintf(
		"json_build_array(json_build_object('count', (SELECT count(*) FROM %s c WHERE %s = %s))) AS %s",
		ident(ce.Relation),
		qualified("c", ce.ChildKey),
		qualified(alias, ce.ParentKey),
		ident(ce.Relation),
	)
}

// BuildSelect renders a Query.
//
//	SELECT t.*, json_build_array(...) AS "registrations" FROM "events" t
//	WHERE t."id" = $1 ORDER BY t."created_at" DESC LIMIT 10
func BuildSelect(q table.Query) Statement {
	const alias = "t"
	var b builder

	cols := []string{alias + ".*"}
	if len(q.Columns) > 0 {
		cols = cols[:0]
		for _, c := range q.Columns {
			cols = append(cols, qualified(alias, c))
		}
	}
	for _, ce := range q.Counts {
		cols = append(cols, countEmbed(alias, ce))
	}

	b.sb.WriteString("SELECT ")
	b.sb.WriteString(strings.Join(cols, ", "))
	b.sb.WriteString(" FROM ")
	b.sb.WriteString(ident(q.Table))
	b.sb.WriteString(" " + alias)
	b.where(alias, q.Filters)

	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = qualified(alias, o.Column) + " " + dir
		}
		b.sb.WriteString(" ORDER BY ")
		b.sb.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		b.sb.WriteString(" LIMIT " + b.param(q.Limit))
	}
	return b.statement()
}

func (b *builder) insertInto(tbl string, row table.Row) []string {
	cols := sortedColumns(row)
	quoted := make([]string, len(cols))
	vals := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
		vals[i] = b.param(row[c])
	}
	fmt.Fprintf(&b.sb, "INSERT INTO %s (%s) VALUES (%s)",
		ident(tbl), strings.Join(quoted, ", "), strings.Join(vals, ", "))
	return cols
}

// BuildInsert renders a single-row INSERT ... RETURNING *.
func BuildInsert(tbl string, row table.Row) Statement {
	var b builder
	b.insertInto(tbl, row)
	b.sb.WriteString(" RETURNING *")
	return b.statement()
}

// BuildUpsert renders INSERT ... ON CONFLICT (keys) DO UPDATE SET every
// non-key column from EXCLUDED. When the row holds only key columns the
// first key is rewritten to itself so RETURNING still yields the row.
func BuildUpsert(tbl string, row table.Row, onConflict []string) Statement {
	var b builder
	cols := b.insertInto(tbl, row)

	isKey := make(map[string]bool, len(onConflict))
	keys := make([]string, len(onConflict))
	for i, k := range onConflict {
		isKey[k] = true
		keys[i] = ident(k)
	}

	var sets []string
	for _, c := range cols {
		if !isKey[c] {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", ident(c), ident(c)))
		}
	}
	if len(sets) == 0 {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", keys[0], keys[0]))
	}

	fmt.Fprintf(&b.sb, " ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		strings.Join(keys, ", "), strings.Join(sets, ", "))
	return b.statement()
}

// BuildUpdate renders UPDATE ... SET ... WHERE ...
func BuildUpdate(tbl string, values table.Row, filters []table.Filter) Statement {
	var b builder
	cols := sortedColumns(values)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = ident(c) + " = " + b.param(values[c])
	}
	fmt.Fprintf(&b.sb, "UPDATE %s SET %s", ident(tbl), strings.Join(sets, ", "))
	b.where("", filters)
	return b.statement()
}

// BuildDelete renders DELETE FROM ... WHERE ...
func BuildDelete(tbl string, filters []table.Filter) Statement {
	var b builder
	b.sb.WriteString("DELETE FROM " + ident(tbl))
	b.where("", filters)
	return b.statement()
}
