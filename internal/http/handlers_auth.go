package httpx

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/service"
)

const (
	// SessionExpiredMessage is shown on the login page after an expired session.
	SessionExpiredMessage = "Session expired. Please login again."
	ssoFailedMessage      = "Single sign-on failed. Please try again."
	oauthCookieMaxAge     = 600
)

func loginMeta() PageMeta {
	return PageMeta{Title: "Admin Login - EventDesk", PageTitle: "Admin Login", CurrentPage: PageLogin}
}

// LoginPage renders the admin login form. A tab that already holds a valid
// session goes straight to the dashboard.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if h.Sessions.Validate(r.Context(), TabScopeFromContext(r.Context())).OK() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginView{Next: next, Expired: r.URL.Query().Get("expired") == "1"}, http.StatusOK)
}

type loginView struct {
	Email   string
	Next    string
	Error   string
	Expired bool
}

func (h *UIHandlers) renderLogin(w http.ResponseWriter, r *http.Request, v loginView, status int) {
	data := pageData(r, loginMeta(), map[string]any{
		"Email":      v.Email,
		"Next":       v.Next,
		"Error":      v.Error,
		"SSOEnabled": h.Auth.SSOEnabled(),
	})
	if v.Expired {
		data["Notice"] = SessionExpiredMessage
	}
	h.renderPageStatus(w, r, status, data)
}

// Login handles the password login form.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	next := safeNext(r.PostFormValue("next"))

	admin, err := h.Auth.Login(r.Context(), service.LoginInput{
		Email:     email,
		Password:  r.PostFormValue("password"),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.renderLogin(w, r, loginView{
			Email: strings.TrimSpace(email),
			Next:  next,
			Error: apperrors.UserMessage(err, service.ErrInvalidCredentials.Error()),
		}, http.StatusUnauthorized)
		return
	}

	if _, err := h.Sessions.Create(r.Context(), TabScopeFromContext(r.Context()), admin.ID, admin.Email); err != nil {
		h.logger().ErrorContext(r.Context(), "failed to create admin session", "admin_id", admin.ID, "error", err)
		h.renderLogin(w, r, loginView{Email: admin.Email, Next: next, Error: "Unable to sign in right now. Please try again."},
			http.StatusServiceUnavailable)
		return
	}
	redirect(w, r, next)
}

// Logout destroys the admin session of the current tab scope.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), TabScopeFromContext(r.Context())); err != nil {
		h.logger().WarnContext(r.Context(), "failed to destroy admin session", "error", err)
	}
	redirect(w, r, loginPath)
}

// SessionCheck is polled by the admin layout. A valid session answers 204;
// otherwise htmx is told to navigate to the login page.
func (h *UIHandlers) SessionCheck(w http.ResponseWriter, r *http.Request) {
	res := h.Sessions.Validate(r.Context(), TabScopeFromContext(r.Context()))
	if res.OK() {
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	target := loginPath
	if res.State == domainauth.StateExpired {
		target += "?expired=1"
	}
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"state": res.State.String(), "redirect": target})
}

// SSOLogin starts the identity provider flow.
func (h *UIHandlers) SSOLogin(w http.ResponseWriter, r *http.Request) {
	res, err := h.Auth.BeginSSO(r.Context(), "")
	if err != nil {
		if errors.Is(err, service.ErrSSODisabled) {
			h.NotFound(w, r)
			return
		}
		h.logger().ErrorContext(r.Context(), "failed to begin sso", "error", err)
		h.renderLogin(w, r, loginView{Next: dashboardPath, Error: ssoFailedMessage}, http.StatusBadGateway)
		return
	}
	for name, value := range map[string]string{oauthStateCookie: res.State, oauthNonceCookie: res.Nonce} {
		setCookie(w, r, cookieParams{
			Name:     name,
			Value:    value,
			Domain:   h.CookieDomain,
			MaxAge:   oauthCookieMaxAge,
			HTTPOnly: true,
		})
	}
	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

// SSOCallback completes the identity provider flow and opens an admin session.
func (h *UIHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := cookieValue(r, oauthStateCookie)
	nonce := cookieValue(r, oauthNonceCookie)
	clearCookie(w, r, oauthStateCookie, h.CookieDomain)
	clearCookie(w, r, oauthNonceCookie, h.CookieDomain)

	if state == "" || q.Get("state") != state {
		h.renderLogin(w, r, loginView{Next: dashboardPath, Error: ssoFailedMessage}, http.StatusBadRequest)
		return
	}

	admin, err := h.Auth.CompleteSSO(r.Context(), service.CompleteLoginInput{
		Code:      q.Get("code"),
		State:     state,
		Nonce:     nonce,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		msg := ssoFailedMessage
		if errors.Is(err, service.ErrNoAdminAccount) {
			msg = service.ErrNoAdminAccount.Error()
		}
		h.logger().WarnContext(r.Context(), "sso login failed", "error", err)
		h.renderLogin(w, r, loginView{Next: dashboardPath, Error: msg}, http.StatusUnauthorized)
		return
	}

	if _, err := h.Sessions.Create(r.Context(), TabScopeFromContext(r.Context()), admin.ID, admin.Email); err != nil {
		h.logger().ErrorContext(r.Context(), "failed to create admin session", "admin_id", admin.ID, "error", err)
		h.renderLogin(w, r, loginView{Next: dashboardPath, Error: ssoFailedMessage}, http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// safeNext defaults post-login redirects to the dashboard.
func safeNext(candidate string) string {
	if strings.TrimSpace(candidate) == "" {
		return dashboardPath
	}
	if p := safeRedirectPath(candidate); p != "/" {
		return p
	}
	return dashboardPath
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sessionRemaining is exposed to templates as minutes left in the session.
func sessionRemaining(s domainauth.Session, now time.Time) int {
	d := s.ExpiresAt().Sub(now)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
