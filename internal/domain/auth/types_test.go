package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSession_RoundTrip(t *testing.T) {
	s := Session{AdminID: "a1", AdminEmail: "admin@example.com", Token: "abc", ExpiryMS: 1700000000000}
	got, ok := ParseSession(s.Fields())
	assert.True(t, ok)
	assert.Equal(t, s, got)
}

func TestParseSession_MissingOrMalformed(t *testing.T) {
	base := Session{AdminID: "a1", AdminEmail: "admin@example.com", Token: "abc", ExpiryMS: 1}.Fields()

	for _, k := range SessionKeys() {
		fields := map[string]string{}
		for kk, v := range base {
			if kk != k {
				fields[kk] = v
			}
		}
		_, ok := ParseSession(fields)
		assert.False(t, ok, "missing %s", k)
	}

	base[KeySessionExpiry] = "soon"
	_, ok := ParseSession(base)
	assert.False(t, ok)
}

func TestSession_ExpiredAt(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	s := Session{ExpiryMS: now.UnixMilli()}

	assert.False(t, s.ExpiredAt(now), "valid at exactly expiry")
	assert.True(t, s.ExpiredAt(now.Add(time.Millisecond)))
	assert.Equal(t, "expired", StateExpired.String())
	assert.Equal(t, "no_session", StateNoSession.String())
}
