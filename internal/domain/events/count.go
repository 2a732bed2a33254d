package events

import (
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
)

// countExpr reads the embedded registration count, [{"count": N}].
const countExpr = table.Registrations + "[0].count"

// RegistrationCount extracts the embedded registration count from an event
// row. A missing or empty embed counts as zero.
func RegistrationCount(row table.Row) (int, error) {
	v, err := jmespath.Search(countExpr, map[string]any(row))
	if err != nil {
		return 0, fmt.Errorf("read registration count: %w", err)
	}
	if v == nil {
		return 0, nil
	}
	n, ok := table.ToInt(v)
	if !ok {
		return 0, fmt.Errorf("registration count has type %T", v)
	}
	return int(n), nil
}

// FromRows maps event rows including their registration counts.
func FromRows(rows []table.Row) ([]model.Event, error) {
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		e := model.EventFromRow(r)
		n, err := RegistrationCount(r)
		if err != nil {
			return nil, err
		}
		e.RegistrationCount = n
		out = append(out, e)
	}
	return out, nil
}
