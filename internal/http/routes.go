package httpx

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	eventdesk "github.com/target/eventdesk"
	"github.com/target/eventdesk/internal/observability/statsd"
	"github.com/target/eventdesk/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Events        *service.EventService
	Registrations *service.RegistrationService
	Auth          *service.AdminAuthService
	Sessions      *service.SessionManager
	CookieDomain  string
	Compression   bool
	// CompressionLevel is the gzip level; zero means the gzip default.
	CompressionLevel int
	Location         *time.Location // Timezone for event dates (optional, UTC)
	// TemplateFS and StaticFS override the embedded assets (optional).
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool         // Serve templates and static files from disk
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
	Metrics    statsd.Sink  // Request metrics (optional)
}

func (s RouterServices) validate() error {
	switch {
	case s.Events == nil:
		return errors.New("router: Events is required")
	case s.Registrations == nil:
		return errors.New("router: Registrations is required")
	case s.Auth == nil:
		return errors.New("router: Auth is required")
	case s.Sessions == nil:
		return errors.New("router: Sessions is required")
	}
	return nil
}

// NewRouter creates the HTTP handler with its middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if err := services.validate(); err != nil {
		return nil, err
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := assetFS(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     logger,
		Location:   services.Location,
	})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:             tr,
		Events:        services.Events,
		Registrations: services.Registrations,
		Auth:          services.Auth,
		Sessions:      services.Sessions,
		CookieDomain:  services.CookieDomain,
		Location:      services.Location,
		IsDev:         services.IsDev,
		Logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /static/", staticHandler(staticFS, services.IsDev))
	registerPublicRoutes(mux, ui)
	registerAuthRoutes(mux, ui)
	registerAdminRoutes(mux, ui, RequireAdmin(services.Sessions))

	// Anything no other pattern claims gets the app's 404 page.
	mux.HandleFunc("/", ui.NotFound)

	handler := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(mux)
	handler = TabScope(services.CookieDomain)(handler)
	if services.Compression {
		handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})(handler)
	}
	if services.Metrics != nil {
		handler = Metrics(services.Metrics)(handler)
	}
	handler = Logging(logger)(handler)
	return Recover(logger)(handler), nil
}

func assetFS(s RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := s.TemplateFS, s.StaticFS
	if s.IsDev {
		if templateFS == nil {
			templateFS = os.DirFS(TemplatePathFromRoot)
		}
		if staticFS == nil {
			staticFS = os.DirFS("frontend/static")
		}
		return templateFS, staticFS, nil
	}
	var err error
	if templateFS == nil {
		if templateFS, err = fs.Sub(eventdesk.TemplateFS, "frontend/templates"); err != nil {
			return nil, nil, err
		}
	}
	if staticFS == nil {
		if staticFS, err = fs.Sub(eventdesk.StaticFS, "frontend/static"); err != nil {
			return nil, nil, err
		}
	}
	return templateFS, staticFS, nil
}

func registerPublicRoutes(mux *http.ServeMux, ui *UIHandlers) {
	mux.HandleFunc("GET /{$}", ui.PublicEvents)
	mux.HandleFunc("GET /register", ui.RegisterForm)
	mux.HandleFunc("POST /register", ui.Register)
}

func registerAuthRoutes(mux *http.ServeMux, ui *UIHandlers) {
	mux.HandleFunc("GET /admin/login", ui.LoginPage)
	mux.HandleFunc("POST /admin/login", ui.Login)
	mux.HandleFunc("POST /admin/logout", ui.Logout)
	mux.HandleFunc("GET /admin/session/check", ui.SessionCheck)
	mux.HandleFunc("GET /auth/login", ui.SSOLogin)
	mux.HandleFunc("GET /auth/callback", ui.SSOCallback)
}

func registerAdminRoutes(mux *http.ServeMux, ui *UIHandlers, requireAdmin func(http.Handler) http.Handler) {
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAdmin(h))
	}
	mux.Handle("GET /admin/{$}", http.RedirectHandler(dashboardPath, http.StatusSeeOther))
	admin("GET /admin/events", ui.Dashboard)
	admin("POST /admin/events/actions", ui.EventAction)
	admin("GET /admin/events/new", ui.NewEventForm)
	admin("POST /admin/events", ui.CreateEvent)
	admin("GET /admin/events/{id}/edit", ui.EditEventForm)
	admin("POST /admin/events/{id}", ui.UpdateEvent)
	admin("GET /admin/events/{id}/registrations", ui.EventRegistrations)
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	// Nothing more to do if the client connection is gone.
	_, _ = io.WriteString(w, healthResponse)
}

// staticHandler serves /static/*. Disk-served files (dev) are never cached.
func staticHandler(fsys fs.FS, isDev bool) http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		files.ServeHTTP(w, r)
	})
}
