package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/http/ui/events"
)

func loggedIn(t *testing.T) (*testApp, *browser) {
	t.Helper()
	app := newTestApp(t)
	app.seedAdmin(t)
	b := app.browser(t)
	b.mustLogin()
	return app, b
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	app.seedEvents(t)

	rec := b.get("/admin/events")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Go Workshop")
	assert.Contains(t, body, "Draft Workshop")
	assert.Contains(t, body, "Hidden Meetup")
	assert.Contains(t, body, `hx-get="/admin/session/check"`)
	assert.Contains(t, body, "every 60s")
}

func TestDashboard_SearchAndStatus(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	app.seedEvents(t)

	rec := b.get("/admin/events?q=draft")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Draft Workshop")
	assert.NotContains(t, rec.Body.String(), "Go Workshop")

	rec = b.get("/admin/events?status=published")
	assert.Contains(t, rec.Body.String(), "Go Workshop")
	assert.NotContains(t, rec.Body.String(), "Hidden Meetup")
}

func TestDashboard_EmptyState(t *testing.T) {
	t.Parallel()
	_, b := loggedIn(t)
	rec := b.get("/admin/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), events.EmptyTitle)
}

func TestDashboard_LoadError(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	app.gateway.SetFailure(apperrors.Unavailable("gateway down"))
	t.Cleanup(func() { app.gateway.SetFailure(nil) })

	rec := b.get("/admin/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), events.LoadErrorMessage)
}

func TestDashboard_PartialRender(t *testing.T) {
	t.Parallel()
	_, b := loggedIn(t)
	rec := b.getHTMX("/admin/events")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "<title>Events - EventDesk</title>")
	assert.Contains(t, body, `hx-swap-oob="outerHTML"`)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "nav:activate")
}

func TestEventAction_ToggleVisibility(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	published, _, _ := app.seedEvents(t)

	rec := b.postForm("/admin/events/actions", url.Values{
		"action":  {"toggle-visibility"},
		"id":      {published.ID},
		"visible": {"false"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := app.events.Get(context.Background(), published.ID)
	require.NoError(t, err)
	assert.False(t, got.IsVisible)
}

func TestEventAction_DeleteFlow(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	_, draft, _ := app.seedEvents(t)

	rec := b.postForm("/admin/events/actions", url.Values{"action": {"request-delete"}, "id": {draft.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Delete event?")
	assert.Contains(t, rec.Body.String(), `name="pending_delete" value="`+draft.ID+`"`)

	rec = b.postForm("/admin/events/actions", url.Values{"action": {"cancel-delete"}, "pending_delete": {draft.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Delete event?")
	assert.Equal(t, 3, app.gateway.Len(table.Events))

	rec = b.postForm("/admin/events/actions", url.Values{"action": {"confirm-delete"}, "pending_delete": {draft.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Draft Workshop")
	assert.Equal(t, 2, app.gateway.Len(table.Events))
}

func TestEventAction_Errors(t *testing.T) {
	t.Parallel()
	_, b := loggedIn(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{name: "unknown action", form: url.Values{"action": {"explode"}}, want: "Unknown action"},
		{name: "toggle without id", form: url.Values{"action": {"toggle-visibility"}}, want: "No event selected"},
		{name: "confirm without pending", form: url.Values{"action": {"confirm-delete"}}, want: "No event selected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.postForm("/admin/events/actions", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestEventAction_RequiresAdmin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	rec := app.browser(t).postForm("/admin/events/actions", url.Values{"action": {"reload"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)

	rec := b.get("/admin/events/new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create Event")

	rec = b.postForm("/admin/events", url.Values{"title": {""}, "event_date": {"tomorrow"}, "max_participants": {"0"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, errMsgFixBelow)
	assert.Contains(t, body, "Title is required.")
	assert.Contains(t, body, "Event date is not a valid date.")
	assert.Contains(t, body, "Max participants must be between 1 and 100000.")
	assert.Zero(t, app.gateway.Len(table.Events))

	rec = b.postForm("/admin/events", url.Values{
		"title":             {"Rust Night"},
		"venue":             {"Lab 2"},
		"event_type":        {"Meetup"},
		"event_date":        {"2030-05-01T18:30"},
		"max_participants":  {"40"},
		"is_visible":        {"on"},
		"registration_open": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, dashboardPath, rec.Header().Get("Location"))

	list, err := app.events.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	e := list[0]
	assert.Equal(t, "Rust Night", e.Title)
	assert.True(t, e.EventDate.Equal(time.Date(2030, time.May, 1, 18, 30, 0, 0, time.UTC)))
	require.NotNil(t, e.MaxParticipants)
	assert.Equal(t, 40, *e.MaxParticipants)
	assert.True(t, e.IsVisible)
	assert.False(t, e.IsDraft)
}

func TestUpdateEvent(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	e := app.seedEvent(t, model.EventRequest{Title: "Old Title", IsVisible: true})

	rec := b.get("/admin/events/" + e.ID + "/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Old Title"`)
	assert.Contains(t, rec.Body.String(), "Save Changes")

	rec = b.postForm("/admin/events/"+e.ID, url.Values{
		"title":      {"New Title"},
		"event_date": {"2030-06-01"},
		"is_draft":   {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	got, err := app.events.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.True(t, got.IsDraft)
	assert.False(t, got.IsVisible)
}

func TestEditEvent_NotFound(t *testing.T) {
	t.Parallel()
	_, b := loggedIn(t)
	rec := b.get("/admin/events/00000000-0000-0000-0000-000000000000/edit")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestEventRegistrations(t *testing.T) {
	t.Parallel()
	app, b := loggedIn(t)
	published, _, _ := app.seedEvents(t)

	rec := b.postForm("/register", validRegistrationForm(published.Title))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = b.get("/admin/events/" + published.ID + "/registrations")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Registrations: Go Workshop")
	assert.Contains(t, body, "Asha Patil")
	assert.Contains(t, body, "1 registered")
}

func TestEventForm_RoundTrip(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("IST", 5*60*60+30*60)
	limit := 25
	desc := "Hands-on"
	e := model.Event{
		Title:            "Go Workshop",
		Description:      &desc,
		EventDate:        time.Date(2030, time.March, 14, 4, 30, 0, 0, time.UTC),
		MaxParticipants:  &limit,
		IsVisible:        true,
		RegistrationOpen: true,
	}
	f := eventFormFrom(e, loc)
	assert.Equal(t, "2030-03-14T10:00", f.EventDate)
	assert.Equal(t, "25", f.MaxParticipants)
	assert.Empty(t, f.validate())

	req := f.request(loc)
	assert.True(t, req.EventDate.Equal(e.EventDate))
	require.NotNil(t, req.MaxParticipants)
	assert.Equal(t, 25, *req.MaxParticipants)
	assert.Equal(t, desc, req.Description)
}

func TestStatusForError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.NotFound("missing"), http.StatusNotFound},
		{apperrors.Conflict("dupe"), http.StatusConflict},
		{apperrors.Unavailable("down"), http.StatusServiceUnavailable},
		{apperrors.Internal("oops"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), "%v", tt.err)
	}
}
