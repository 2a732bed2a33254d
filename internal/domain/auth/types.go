package auth

// Package auth contains domain-level types for admin sign-in and the
// tab-scoped admin session. It is pure and free of adapter concerns.

import (
	"strconv"
	"time"
)

// Session store keys. All four must be present for a session to exist.
const (
	KeyAdminID       = "admin_id"
	KeyAdminEmail    = "admin_email"
	KeySessionToken  = "session_token"
	KeySessionExpiry = "session_expiry"
)

// SessionKeys lists every key owned by a Session, in write order.
func SessionKeys() []string {
	return []string{KeyAdminID, KeyAdminEmail, KeySessionToken, KeySessionExpiry}
}

// Lifetime is how long a session stays valid after login.
const Lifetime = 2 * time.Hour

// State is the lifecycle state of a tab-scoped session.
type State int

const (
	StateNoSession State = iota
	StateValid
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	default:
		return "no_session"
	}
}

// Session is the pseudo-session kept in the tab-scoped store.
// Token is a staleness marker; it grants nothing on the data gateway.
type Session struct {
	AdminID    string
	AdminEmail string
	Token      string
	// ExpiryMS is the absolute expiry in milliseconds since the Unix epoch.
	ExpiryMS int64
}

// ExpiresAt returns ExpiryMS as a time.
func (s Session) ExpiresAt() time.Time { return time.UnixMilli(s.ExpiryMS) }

// ExpiredAt reports whether the session is past its expiry at now.
// A session is still valid at exactly its expiry instant.
func (s Session) ExpiredAt(now time.Time) bool { return now.UnixMilli() > s.ExpiryMS }

// Fields encodes the session into store fields.
func (s Session) Fields() map[string]string {
	return map[string]string{
		KeyAdminID:       s.AdminID,
		KeyAdminEmail:    s.AdminEmail,
		KeySessionToken:  s.Token,
		KeySessionExpiry: strconv.FormatInt(s.ExpiryMS, 10),
	}
}

// ParseSession decodes store fields. ok is false when any field is missing,
// empty, or the expiry is not an integer.
func ParseSession(fields map[string]string) (Session, bool) {
	for _, k := range SessionKeys() {
		if fields[k] == "" {
			return Session{}, false
		}
	}
	expiry, err := strconv.ParseInt(fields[KeySessionExpiry], 10, 64)
	if err != nil {
		return Session{}, false
	}
	return Session{
		AdminID:    fields[KeyAdminID],
		AdminEmail: fields[KeyAdminEmail],
		Token:      fields[KeySessionToken],
		ExpiryMS:   expiry,
	}, true
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}
