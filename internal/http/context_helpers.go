package httpx

import (
	"context"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
)

// Unexported context key types avoid collisions across packages.
type (
	sessionKey  struct{}
	tabScopeKey struct{}
)

// SetSessionInContext returns a child context that carries the admin session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the admin session and whether one is present.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return s, ok
}

func setTabScopeInContext(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, tabScopeKey{}, scope)
}

// TabScopeFromContext returns the tab scope id set by the TabScope middleware.
func TabScopeFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tabScopeKey{}).(string)
	return s
}
