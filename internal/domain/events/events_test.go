package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
)

func strPtr(s string) *string { return &s }

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "1", Title: "Draft Workshop", IsDraft: true, RegistrationOpen: true, RegistrationCount: 2},
		{ID: "2", Title: "Hackathon", Venue: strPtr("Lab 3"), IsVisible: true, IsFeatured: true, RegistrationOpen: true, RegistrationCount: 3},
		{ID: "3", Title: "Alumni Meet", Description: strPtr("Evening talks"), RegistrationOpen: false},
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	got := ComputeStats(sampleEvents())
	assert.Equal(t, Stats{Total: 3, Published: 1, Drafts: 1, TotalRegistrations: 5}, got)
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestFilter_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	evs := sampleEvents()
	assert.Equal(t, evs, Filter(evs, "", StatusAll))
}

func TestFilter_Search(t *testing.T) {
	t.Parallel()

	got := Filter(sampleEvents(), "draft", StatusAll)
	require.Len(t, got, 1)
	assert.Equal(t, "Draft Workshop", got[0].Title)

	got = Filter(sampleEvents(), "LAB", StatusAll)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got = Filter(sampleEvents(), "evening", StatusAll)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestFilter_Status(t *testing.T) {
	t.Parallel()

	ids := func(evs []model.Event) []string {
		out := []string{}
		for _, e := range evs {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		status StatusFilter
		want   []string
	}{
		{StatusPublished, []string{"2"}},
		{StatusDraft, []string{"1"}},
		{StatusFeatured, []string{"2"}},
		{StatusClosed, []string{"3"}},
		{StatusAll, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ids(Filter(sampleEvents(), "", tt.status)), string(tt.status))
	}
}

func TestFilter_ComposesInAnyOrder(t *testing.T) {
	t.Parallel()

	evs := sampleEvents()
	a := Filter(Filter(evs, "a", StatusAll), "", StatusClosed)
	b := Filter(Filter(evs, "", StatusClosed), "a", StatusAll)
	assert.Equal(t, a, b)
	assert.Equal(t, a, Filter(evs, "a", StatusClosed))
}

func TestParseStatusFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusDraft, ParseStatusFilter(" Draft "))
	assert.Equal(t, StatusAll, ParseStatusFilter("bogus"))
	assert.Equal(t, StatusAll, ParseStatusFilter(""))
}

func TestBadges(t *testing.T) {
	t.Parallel()

	labels := func(e model.Event) []string {
		var out []string
		for _, b := range Badges(e) {
			out = append(out, b.Label)
		}
		return out
	}

	assert.Equal(t, []string{"Draft"}, labels(model.Event{IsDraft: true, IsVisible: true, RegistrationOpen: true}))
	assert.Equal(t, []string{"Published", "Featured"}, labels(model.Event{IsVisible: true, IsFeatured: true, RegistrationOpen: true}))
	assert.Equal(t, []string{"Hidden", "Closed"}, labels(model.Event{}))
	assert.Equal(t, []string{"Draft", "Featured", "Closed"}, labels(model.Event{IsDraft: true, IsFeatured: true}))
}

func TestRegistrationCount(t *testing.T) {
	t.Parallel()

	n, err := RegistrationCount(table.Row{"registrations": []any{map[string]any{"count": int64(4)}}})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = RegistrationCount(table.Row{"registrations": []any{}})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = RegistrationCount(table.Row{"title": "x"})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = RegistrationCount(table.Row{"registrations": []any{map[string]any{"count": "many"}}})
	require.Error(t, err)
}

func TestFromRows(t *testing.T) {
	t.Parallel()

	evs, err := FromRows([]table.Row{
		{"id": "a", "title": "A", "registrations": []any{map[string]any{"count": float64(2)}}},
		{"id": "b", "title": "B"},
	})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, 2, evs[0].RegistrationCount)
	assert.Equal(t, 0, evs[1].RegistrationCount)
}
