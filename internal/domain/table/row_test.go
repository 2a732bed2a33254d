package table

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowAccessors(t *testing.T) {
	t.Parallel()

	row := Row{
		"title":      "Hackathon",
		"is_visible": true,
		"is_draft":   "false",
		"max":        json.Number("50"),
		"f":          float64(3),
		"frac":       1.5,
		"when":       "2025-03-01T10:30:00+00:00",
		"naive":      "2025-03-01T10:30:00",
		"empty":      nil,
	}

	assert.Equal(t, "Hackathon", row.String("title"))
	assert.Equal(t, "", row.String("empty"))
	assert.Nil(t, row.StringPtr("missing"))
	assert.True(t, row.Bool("is_visible"))
	assert.False(t, row.Bool("is_draft"))

	n, ok := row.Int("max")
	require.True(t, ok)
	assert.Equal(t, int64(50), n)

	n, ok = row.Int("f")
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = row.Int("frac")
	assert.False(t, ok)

	want := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	assert.True(t, want.Equal(row.Time("when")))
	assert.True(t, want.Equal(row.Time("naive")))
	assert.True(t, row.Time("missing").IsZero())
}

func TestQueryValidate(t *testing.T) {
	t.Parallel()

	ok := Query{
		Table:   Events,
		Filters: []Filter{Eq("id", "x")},
		Order:   []Order{{Column: "created_at", Desc: true}},
		Counts:  []CountEmbed{{Relation: Registrations, ParentKey: "id", ChildKey: "event_id"}},
	}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Filters = []Filter{Eq("id; drop table events", 1)}
	require.Error(t, bad.Validate())

	require.Error(t, Query{Table: "Events"}.Validate())
	require.Error(t, ValidateRow(Row{}))
	require.Error(t, ValidateRow(Row{"bad-col": 1}))
}
