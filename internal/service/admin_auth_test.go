package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/eventdesk/internal/adapters/memgateway"
	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/mocks"
	"github.com/target/eventdesk/internal/ports"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func seedAdmin(t *testing.T, gw *memgateway.Gateway, email, hash string) string {
	t.Helper()
	rows, err := gw.Insert(context.Background(), table.Admins, table.Row{"email": email, "password_hash": hash})
	require.NoError(t, err)
	return rows[0].String("id")
}

func newAuthService(gw ports.Gateway, provider ports.AuthProvider) *AdminAuthService {
	return NewAdminAuthService(AdminAuthServiceOptions{
		Gateway:  gw,
		Provider: provider,
		Deps:     AdminAuthDeps{Clock: ports.NewFixedTimeProvider(time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC))},
	})
}

func TestAdminAuthService_Login(t *testing.T) {
	t.Parallel()
	gw := memgateway.New()
	legacyID := seedAdmin(t, gw, "legacy@example.com", sha256Hex("hunter2"))
	bcryptHash, err := HashPassword("s3cret")
	require.NoError(t, err)
	seedAdmin(t, gw, "modern@example.com", bcryptHash)
	svc := newAuthService(gw, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      LoginInput
		wantErr error
	}{
		{"legacy sha256 with normalised email", LoginInput{Email: "  Legacy@Example.COM ", Password: "hunter2"}, nil},
		{"bcrypt", LoginInput{Email: "modern@example.com", Password: "s3cret"}, nil},
		{"wrong password", LoginInput{Email: "legacy@example.com", Password: "nope"}, ErrInvalidCredentials},
		{"unknown admin", LoginInput{Email: "ghost@example.com", Password: "hunter2"}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, err := svc.Login(ctx, tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Invalid email or password", err.Error())
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, admin.ID)
		})
	}

	logs, err := gw.Select(ctx, table.Query{Table: table.AdminLoginLogs, Filters: []table.Filter{table.Eq("admin_id", legacyID)}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "N/A", logs[0]["ip_address"])
	assert.Equal(t, true, logs[0]["success"])
}

func TestAdminAuthService_Login_MissingFields(t *testing.T) {
	t.Parallel()
	svc := newAuthService(memgateway.New(), nil)

	for _, in := range []LoginInput{{Email: "a@example.com"}, {Password: "x"}, {Email: "   ", Password: "x"}} {
		_, err := svc.Login(context.Background(), in)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "Please enter both email and password", err.Error())
	}
}

func TestAdminAuthService_Login_GatewayFailure(t *testing.T) {
	t.Parallel()
	gw := memgateway.New()
	gw.SetFailure(apperrors.Unavailable("gateway down"))
	svc := newAuthService(gw, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminAuthService_Login_LogFailureIgnored(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	svc := newAuthService(gw, nil)
	ctx := context.Background()

	gw.EXPECT().Select(ctx, gomock.Any()).Return([]table.Row{
		{"id": "admin-1", "email": "a@example.com", "password_hash": sha256Hex("pw")},
	}, nil)
	gw.EXPECT().Insert(ctx, table.AdminLoginLogs, gomock.Any()).Return(nil, errors.New("relation does not exist"))

	admin, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", admin.ID)
}

func TestAdminAuthService_SSO(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockAuthProvider(ctrl)
	gw := memgateway.New()
	adminID := seedAdmin(t, gw, "sso@example.com", "")
	svc := newAuthService(gw, provider)
	ctx := context.Background()
	require.True(t, svc.SSOEnabled())

	provider.EXPECT().Begin(ctx, ports.BeginInput{RedirectURL: "http://x/auth/callback"}).
		Return("https://idp/auth", "st", "no", nil)
	res, err := svc.BeginSSO(ctx, "http://x/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, BeginLoginResult{AuthURL: "https://idp/auth", State: "st", Nonce: "no"}, res)

	provider.EXPECT().Exchange(ctx, ports.ExchangeInput{Code: "c", State: "st", Nonce: "no"}).
		Return(domainauth.Identity{Subject: "u1", Email: "SSO@example.com"}, nil)
	admin, err := svc.CompleteSSO(ctx, CompleteLoginInput{Code: "c", State: "st", Nonce: "no"})
	require.NoError(t, err)
	assert.Equal(t, adminID, admin.ID)

	provider.EXPECT().Exchange(ctx, gomock.Any()).Return(domainauth.Identity{Subject: "u2", Email: "other@example.com"}, nil)
	_, err = svc.CompleteSSO(ctx, CompleteLoginInput{Code: "c", State: "st", Nonce: "no"})
	require.ErrorIs(t, err, ErrNoAdminAccount)
}

func TestAdminAuthService_SSODisabled(t *testing.T) {
	t.Parallel()
	svc := newAuthService(memgateway.New(), nil)
	assert.False(t, svc.SSOEnabled())
	_, err := svc.BeginSSO(context.Background(), "http://x")
	require.ErrorIs(t, err, ErrSSODisabled)
	_, err = svc.CompleteSSO(context.Background(), CompleteLoginInput{})
	require.ErrorIs(t, err, ErrSSODisabled)
}

func TestAdminAuthService_CreateAdmin(t *testing.T) {
	t.Parallel()
	gw := memgateway.New()
	svc := newAuthService(gw, nil)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, " New@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", admin.Email)
	assert.True(t, VerifyPassword(admin.PasswordHash, "pw"))

	_, err = svc.CreateAdmin(ctx, "new@example.com", "pw2")
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.CreateAdmin(ctx, "not-an-email", "pw")
	assert.True(t, apperrors.IsValidation(err))
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()
	assert.True(t, VerifyPassword(sha256Hex("abc"), "abc"))
	assert.True(t, VerifyPassword("BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD", "abc"))
	assert.False(t, VerifyPassword(sha256Hex("abc"), "abd"))
	assert.False(t, VerifyPassword("", ""))
	assert.False(t, VerifyPassword("$2a$10$invalid", "abc"))
}
