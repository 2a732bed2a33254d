package httpx

import (
	"bytes"
	"html"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/target/eventdesk/internal/http/ui/viewmodel"
	"github.com/target/eventdesk/internal/service"
)

const errMsgFixBelow = "Please fix the errors below."

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T             *TemplateRenderer
	Events        *service.EventService
	Registrations *service.RegistrationService
	Auth          *service.AdminAuthService
	Sessions      *service.SessionManager
	CookieDomain  string
	Location      *time.Location // Timezone for event dates; nil means UTC
	IsDev         bool           // Development mode flag for enhanced error reporting
	Logger        *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if session, ok := SessionFromContext(r.Context()); ok {
		layout.User = &viewmodel.User{Email: session.AdminEmail}
		layout.IsAuthenticated = true
		layout.SessionCheckSeconds = int(service.CheckInterval / time.Second)
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":               layout.Title,
		"PageTitle":           layout.PageTitle,
		"CurrentPage":         layout.CurrentPage,
		"IsAuthenticated":     layout.IsAuthenticated,
		"SessionCheckSeconds": layout.SessionCheckSeconds,
		"CSRFToken":           layout.CSRFToken,
		"Errors":              map[string]string{},
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}

// pageData merges page-specific values over the base data.
func pageData(r *http.Request, meta PageMeta, extra map[string]any) map[string]any {
	data := basePageData(r, meta)
	maps.Copy(data, extra)
	return data
}

// renderPage renders a page with HTMX partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	h.renderPageStatus(w, r, http.StatusOK, data)
}

func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	var buf bytes.Buffer
	if !WantsPartial(r) {
		if err := h.T.ExecuteTemplate(&buf, "layout", data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
			return
		}
	} else {
		title, _ := data["Title"].(string)
		pageTitle, _ := data["PageTitle"].(string)
		current, _ := data["CurrentPage"].(string)
		// <title> updates document.title on partial swaps; the header title is swapped out of band.
		buf.WriteString(`<title>` + html.EscapeString(title) + `</title>`)
		buf.WriteString(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
			html.EscapeString(pageTitle) + `</h1>`)
		if err := h.T.ExecuteTemplate(&buf, ContentTemplateFor(current), data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "partial content render")
			return
		}
		SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger().Error("failed to write page", "error", err, "path", r.URL.Path)
	}
}

// NotFound renders the not-found error page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found", "The page you requested does not exist.")
}

func (h *UIHandlers) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	data := basePageData(r, PageMeta{Title: title + " - EventDesk", PageTitle: title})
	data["StatusCode"] = status
	data["ErrorMessage"] = message

	var buf bytes.Buffer
	if err := h.T.ExecuteTemplate(&buf, "error-layout", data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "error page render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="alert alert-danger"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`))
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
