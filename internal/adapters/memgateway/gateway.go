// Package memgateway is an in-process implementation of the data gateway.
// It backs local development (GATEWAY_DRIVER=memory) and service tests.
package memgateway

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/ports"
)

// Gateway stores rows per table in memory. Safe for concurrent use.
type Gateway struct {
	mu     sync.RWMutex
	tables map[string][]table.Row
	unique map[string][][]string
	now    func() time.Time
	// failWith, when set, is returned by every call.
	failWith error
}

var _ ports.Gateway = (*Gateway)(nil)

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the clock used for created_at defaults.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithUnique declares a unique key on tbl, enforced on Insert.
func WithUnique(tbl string, cols ...string) Option {
	return func(g *Gateway) { g.unique[tbl] = append(g.unique[tbl], cols) }
}

// New creates an empty Gateway with the application's unique keys declared.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		tables: map[string][]table.Row{},
		unique: map[string][][]string{
			table.Admins:        {{"email"}},
			table.Registrations: {{"event_name", "prn"}},
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// SetFailure makes every subsequent call return err; nil clears it.
func (g *Gateway) SetFailure(err error) {
	g.mu.Lock()
	g.failWith = err
	g.mu.Unlock()
}

// Len returns the number of rows in tbl.
func (g *Gateway) Len(tbl string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tables[tbl])
}

// Select returns copies of matching rows.
func (g *Gateway) Select(_ context.Context, q table.Query) ([]table.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid query")
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.failWith != nil {
		return nil, g.failWith
	}

	var out []table.Row
	for _, r := range g.tables[q.Table] {
		if matches(r, q.Filters) {
			out = append(out, g.project(r, q))
		}
	}
	sortRows(out, q.Order)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (g *Gateway) project(r table.Row, q table.Query) table.Row {
	var row table.Row
	if len(q.Columns) == 0 {
		row = r.Clone()
	} else {
		row = make(table.Row, len(q.Columns))
		for _, c := range q.Columns {
			row[c] = r[c]
		}
	}
	for _, ce := range q.Counts {
		var n int64
		for _, child := range g.tables[ce.Relation] {
			if child[ce.ChildKey] != nil && equal(child[ce.ChildKey], r[ce.ParentKey]) {
				n++
			}
		}
		row[ce.Relation] = []any{map[string]any{"count": n}}
	}
	return row
}

// Insert stores rows, assigning id and created_at when absent.
func (g *Gateway) Insert(_ context.Context, tbl string, rows ...table.Row) ([]table.Row, error) {
	if !table.ValidIdent(tbl) {
		return nil, apperrors.Validation("invalid table name %q", tbl)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}

	staged := append([]table.Row(nil), g.tables[tbl]...)
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if err := table.ValidateRow(r); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid row")
		}
		stored := g.withDefaults(r)
		if col, dup := g.violates(tbl, staged, stored); dup {
			return nil, &apperrors.AppError{
				Code:    apperrors.ErrCodeConflict,
				Message: "This value already exists. Please choose a different one.",
				Field:   col,
			}
		}
		staged = append(staged, stored)
		out = append(out, stored.Clone())
	}
	g.tables[tbl] = staged
	return out, nil
}

// Upsert inserts row or overwrites the non-key columns of the existing row
// with the same onConflict values.
func (g *Gateway) Upsert(_ context.Context, tbl string, row table.Row, onConflict []string) (table.Row, error) {
	if err := table.ValidateUpsert(tbl, row, onConflict); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid upsert")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}

	rows := g.tables[tbl]
	for i, existing := range rows {
		if sameKey(existing, row, onConflict) {
			merged := existing.Clone()
			for k, v := range row {
				merged[k] = v
			}
			rows[i] = merged
			return merged.Clone(), nil
		}
	}
	stored := g.withDefaults(row)
	g.tables[tbl] = append(rows, stored)
	return stored.Clone(), nil
}

// Update sets values on matching rows.
func (g *Gateway) Update(_ context.Context, tbl string, values table.Row, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid update")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return 0, g.failWith
	}

	var n int64
	for i, r := range g.tables[tbl] {
		if !matches(r, filters) {
			continue
		}
		updated := r.Clone()
		for k, v := range values {
			updated[k] = v
		}
		g.tables[tbl][i] = updated
		n++
	}
	return n, nil
}

// Delete removes matching rows. Children referencing a deleted event keep
// their row with event_id cleared, mirroring ON DELETE SET NULL.
func (g *Gateway) Delete(_ context.Context, tbl string, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid delete")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return 0, g.failWith
	}

	kept := g.tables[tbl][:0]
	var removed []table.Row
	for _, r := range g.tables[tbl] {
		if matches(r, filters) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	g.tables[tbl] = kept

	if tbl == table.Events {
		for _, ev := range removed {
			for i, reg := range g.tables[table.Registrations] {
				if equal(reg["event_id"], ev["id"]) {
					cleared := reg.Clone()
					cleared["event_id"] = nil
					g.tables[table.Registrations][i] = cleared
				}
			}
		}
	}
	return int64(len(removed)), nil
}

func (g *Gateway) withDefaults(r table.Row) table.Row {
	out := r.Clone()
	if _, ok := out["id"]; !ok {
		out["id"] = uuid.NewString()
	}
	if _, ok := out["created_at"]; !ok {
		out["created_at"] = g.now().UTC()
	}
	return out
}

func (g *Gateway) violates(tbl string, rows []table.Row, candidate table.Row) (string, bool) {
	for _, key := range g.unique[tbl] {
		for _, r := range rows {
			if sameKey(r, candidate, key) {
				return key[len(key)-1], true
			}
		}
	}
	return "", false
}

func sameKey(a, b table.Row, cols []string) bool {
	for _, c := range cols {
		if !equal(a[c], b[c]) {
			return false
		}
	}
	return true
}

func matches(r table.Row, filters []table.Filter) bool {
	for _, f := range filters {
		if !equal(r[f.Column], f.Value) {
			return false
		}
	}
	return true
}

// equal compares loosely so a filter "42" matches a stored 42 and a
// time.Time matches its RFC 3339 form.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() && a == b {
		return true
	}
	return render(a) == render(b)
}

func render(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

func sortRows(rows []table.Row, order []table.Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compare(rows[i][o.Column], rows[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Compare(tb)
	}
	if na, ok := table.ToInt(a); ok {
		if nb, ok := table.ToInt(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(render(a), render(b))
}
