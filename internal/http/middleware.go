package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/observability/statsd"
	"github.com/target/eventdesk/internal/service"
)

const (
	loginPath     = "/admin/login"
	dashboardPath = "/admin/events"
)

// Logging returns a middleware that logs one line per request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Metrics counts requests and records their latency, tagged by method and
// status class.
func Metrics(sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			tags := map[string]string{
				"method": r.Method,
				"status": strconv.Itoa(ww.status/100) + "xx",
			}
			sink.Count("http.requests", 1, tags)
			sink.Timing("http.request.duration", time.Since(start), tags)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TabScope assigns each browser session a scope id kept in a cookie without
// Max-Age, so it ends when the browser session ends. The id keys the admin
// session fields in the session store.
func TabScope(cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := cookieValue(r, TabScopeCookie)
			if _, err := uuid.Parse(scope); err != nil {
				scope = uuid.NewString()
				setCookie(w, r, cookieParams{
					Name:     TabScopeCookie,
					Value:    scope,
					Domain:   cookieDomain,
					HTTPOnly: true,
				})
			}
			next.ServeHTTP(w, r.WithContext(setTabScopeInContext(r.Context(), scope)))
		})
	}
}

// RequireAdmin validates the admin session of the current tab scope. Invalid
// sessions are sent to the login page, with the expiry notice when the
// session had expired.
func RequireAdmin(sessions *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := sessions.Validate(r.Context(), TabScopeFromContext(r.Context()))
			if !res.OK() {
				redirect(w, r, loginRedirect(r, res.State))
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), res.Session)))
		})
	}
}

// loginRedirect builds the login URL for an invalid session. Full-page GETs
// come back to where they started after login.
func loginRedirect(r *http.Request, state domainauth.State) string {
	q := url.Values{}
	if state == domainauth.StateExpired {
		q.Set("expired", "1")
	}
	if r.Method == http.MethodGet && !IsHTMX(r) {
		q.Set("next", safeRedirectPath(r.URL.RequestURI()))
	}
	if len(q) == 0 {
		return loginPath
	}
	return loginPath + "?" + q.Encode()
}
