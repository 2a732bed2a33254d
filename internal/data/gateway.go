package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/target/eventdesk/internal/data/database"
	"github.com/target/eventdesk/internal/data/pgxutil"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/ports"
)

// Gateway implements ports.Gateway directly on PostgreSQL.
type Gateway struct {
	DB *sql.DB
}

var _ ports.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway over db.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{DB: db}
}

// Select runs q and returns rows with driver values normalized.
func (g *Gateway) Select(ctx context.Context, q table.Query) ([]table.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid query")
	}
	st := database.BuildSelect(q)

	var out []table.Row
	if err := pgxutil.WithPgxConn(ctx, g.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = queryRows(ctx, conn, st)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", q.Table, apperrors.MapDBError(err))
	}
	return out, nil
}

// Insert stores each row in one transaction and returns the stored rows.
func (g *Gateway) Insert(ctx context.Context, tbl string, rows ...table.Row) ([]table.Row, error) {
	if !table.ValidIdent(tbl) {
		return nil, apperrors.Validation("invalid table name %q", tbl)
	}
	for _, r := range rows {
		if err := table.ValidateRow(r); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid row")
		}
	}

	out := make([]table.Row, 0, len(rows))
	err := pgxutil.WithPgxTx(ctx, g.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			for _, r := range rows {
				stored, err := queryRows(ctx, tx, database.BuildInsert(tbl, r))
				if err != nil {
					return err
				}
				out = append(out, stored...)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", tbl, apperrors.MapDBError(err))
	}
	return out, nil
}

// Upsert inserts row or overwrites the row sharing its onConflict columns.
func (g *Gateway) Upsert(ctx context.Context, tbl string, row table.Row, onConflict []string) (table.Row, error) {
	if err := table.ValidateUpsert(tbl, row, onConflict); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid upsert")
	}

	var stored []table.Row
	if err := pgxutil.WithPgxConn(ctx, g.DB, func(conn *pgx.Conn) error {
		var err error
		stored, err = queryRows(ctx, conn, database.BuildUpsert(tbl, row, onConflict))
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert into %s: %w", tbl, apperrors.MapDBError(err))
	}
	if len(stored) == 0 {
		return nil, apperrors.Internal("upsert into %s returned no row", tbl)
	}
	return stored[0], nil
}

// Update sets values on rows matching filters.
func (g *Gateway) Update(ctx context.Context, tbl string, values table.Row, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid update")
	}
	if err := table.ValidateRow(values); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid update")
	}
	n, err := g.exec(ctx, database.BuildUpdate(tbl, values, filters))
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", tbl, err)
	}
	return n, nil
}

// Delete removes rows matching filters.
func (g *Gateway) Delete(ctx context.Context, tbl string, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid delete")
	}
	n, err := g.exec(ctx, database.BuildDelete(tbl, filters))
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", tbl, err)
	}
	return n, nil
}

func (g *Gateway) exec(ctx context.Context, st database.Statement) (int64, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, g.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, apperrors.MapDBError(err)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryRows(ctx context.Context, q querier, st database.Statement) ([]table.Row, error) {
	rows, err := q.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]table.Row, len(maps))
	for i, m := range maps {
		out[i] = normalizeRow(m)
	}
	return out, nil
}

// normalizeRow converts driver-specific values: UUID columns arrive as
// [16]byte and are rendered in canonical string form.
func normalizeRow(m map[string]any) table.Row {
	row := make(table.Row, len(m))
	for k, v := range m {
		if b, ok := v.([16]byte); ok {
			v = uuid.UUID(b).String()
		}
		row[k] = v
	}
	return row
}
