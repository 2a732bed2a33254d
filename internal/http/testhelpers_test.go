package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/target/eventdesk/internal/adapters/memgateway"
	"github.com/target/eventdesk/internal/adapters/memstore"
	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/ports"
	"github.com/target/eventdesk/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery staple"
)

// SkipIfNoTemplates skips tests that render pages when the template tree is missing.
func SkipIfNoTemplates(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping integration test")
	}
}

// testApp is a fully wired router over in-memory adapters.
type testApp struct {
	handler  http.Handler
	gateway  *memgateway.Gateway
	store    *memstore.Store
	clock    *ports.FixedTimeProvider
	events   *service.EventService
	auth     *service.AdminAuthService
	sessions *service.SessionManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	SkipIfNoTemplates(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := memgateway.New()
	store := memstore.New()
	clock := ports.NewFixedTimeProvider(time.Now())

	events := service.NewEventService(service.EventServiceOptions{Gateway: gw, Logger: logger})
	auth := service.NewAdminAuthService(service.AdminAuthServiceOptions{
		Gateway: gw,
		Deps:    service.AdminAuthDeps{Clock: clock, Logger: logger},
	})
	sessions := service.NewSessionManager(service.SessionManagerOptions{Store: store, Clock: clock, Logger: logger})

	h, err := NewRouter(RouterServices{
		Events:        events,
		Registrations: service.NewRegistrationService(service.RegistrationServiceOptions{Gateway: gw, Events: events, Logger: logger}),
		Auth:          auth,
		Sessions:      sessions,
		TemplateFS:    os.DirFS(TemplatePathFromTest),
		StaticFS:      os.DirFS("../../frontend/static"),
		Logger:        logger,
	})
	require.NoError(t, err)

	return &testApp{
		handler:  h,
		gateway:  gw,
		store:    store,
		clock:    clock,
		events:   events,
		auth:     auth,
		sessions: sessions,
	}
}

func (a *testApp) seedAdmin(t *testing.T) model.Admin {
	t.Helper()
	admin, err := a.auth.CreateAdmin(context.Background(), testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	return admin
}

func (a *testApp) seedEvent(t *testing.T, req model.EventRequest) model.Event {
	t.Helper()
	if req.EventDate.IsZero() {
		req.EventDate = time.Date(2030, time.March, 14, 10, 0, 0, 0, time.UTC)
	}
	e, err := a.events.Create(context.Background(), req)
	require.NoError(t, err)
	return e
}

// seedEvents creates a published, a draft and a hidden event.
func (a *testApp) seedEvents(t *testing.T) (published, draft, hidden model.Event) {
	t.Helper()
	published = a.seedEvent(t, model.EventRequest{Title: "Go Workshop", Venue: "Hall A", IsVisible: true, RegistrationOpen: true})
	draft = a.seedEvent(t, model.EventRequest{Title: "Draft Workshop", IsVisible: true, IsDraft: true})
	hidden = a.seedEvent(t, model.EventRequest{Title: "Hidden Meetup", EventType: "Meetup"})
	return published, draft, hidden
}

// browser replays cookies across requests the way a single tab would.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	t.Helper()
	return &browser{t: t, handler: a.handler, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	res := rec.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) getHTMX(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Hx-Request", "true")
	return b.do(req)
}

// postForm submits form with the tab's CSRF token, fetching one first if needed.
func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if _, ok := b.cookies[DefaultCSRFCookieName]; !ok {
		b.get("/healthz")
	}
	if form == nil {
		form = url.Values{}
	}
	if !form.Has(DefaultCSRFCookieName) {
		form.Set(DefaultCSRFCookieName, b.cookies[DefaultCSRFCookieName].Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email, password string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.postForm("/admin/login", url.Values{"email": {email}, "password": {password}})
}

func (b *browser) mustLogin() {
	b.t.Helper()
	rec := b.login(testAdminEmail, testAdminPassword)
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(b.t, dashboardPath, rec.Header().Get("Location"))
}
