package devauth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	t.Parallel()
	prov, err := NewProvider(Config{Email: " Dev@Example.com ", Name: "Dev Admin"})
	require.NoError(t, err)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return now }

	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", u.Path)
	assert.Equal(t, state, u.Query().Get("state"))

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: u.Query().Get("code"), State: state, Nonce: nonce})
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, "Dev Admin", id.Name)
	assert.Equal(t, now.Add(domainauth.Lifetime), id.ExpiresAt)
}

func TestProvider_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewProvider(Config{})
	require.Error(t, err)

	prov, err := NewProvider(Config{Email: "dev@example.com"})
	require.NoError(t, err)
	_, err = prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.Error(t, err)
}
