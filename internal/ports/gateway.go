package ports

import (
	"context"

	"github.com/target/eventdesk/internal/domain/table"
)

// Gateway is the remote tabular data service. Errors are *errors.AppError
// values whenever the adapter can classify them.
type Gateway interface {
	Select(ctx context.Context, q table.Query) ([]table.Row, error)
	// Insert stores rows and returns them as stored (ids and defaults filled).
	Insert(ctx context.Context, tbl string, rows ...table.Row) ([]table.Row, error)
	// Upsert inserts row or, when a row with the same onConflict columns
	// exists, overwrites its other columns.
	Upsert(ctx context.Context, tbl string, row table.Row, onConflict []string) (table.Row, error)
	// Update sets values on every row matching filters and returns the affected count.
	Update(ctx context.Context, tbl string, values table.Row, filters ...table.Filter) (int64, error)
	// Delete removes every row matching filters and returns the affected count.
	Delete(ctx context.Context, tbl string, filters ...table.Filter) (int64, error)
}
