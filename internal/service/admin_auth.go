package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/ports"
)

var (
	// ErrInvalidCredentials covers an unknown admin, a wrong password and a
	// failed lookup alike.
	ErrInvalidCredentials = errors.New("Invalid email or password") //nolint:staticcheck // shown to the user verbatim
	// ErrSSODisabled is returned by the SSO flow when no provider is configured.
	ErrSSODisabled = errors.New("single sign-on is not enabled")
	// ErrNoAdminAccount is returned when an SSO identity has no admin row.
	ErrNoAdminAccount = errors.New("No admin account exists for this identity") //nolint:staticcheck // shown to the user verbatim
)

const missingCredentialsMsg = "Please enter both email and password"

// AdminAuthServiceOptions groups dependencies for AdminAuthService.
type AdminAuthServiceOptions struct {
	Gateway  ports.Gateway      // Required
	Provider ports.AuthProvider // Optional: enables SSO
	Deps     AdminAuthDeps
}

// AdminAuthDeps holds the optional ambient dependencies.
type AdminAuthDeps struct {
	Clock  ports.TimeProvider
	Logger *slog.Logger
}

// AdminAuthService checks admin credentials against the admins table.
type AdminAuthService struct {
	gateway  ports.Gateway
	provider ports.AuthProvider
	clock    ports.TimeProvider
	logger   *slog.Logger
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(opts AdminAuthServiceOptions) *AdminAuthService {
	if opts.Gateway == nil {
		panic("Gateway is required")
	}
	clock := opts.Deps.Clock
	if clock == nil {
		clock = ports.RealTimeProvider{}
	}
	logger := opts.Deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminAuthService{
		gateway:  opts.Gateway,
		provider: opts.Provider,
		clock:    clock,
		logger:   logger.With("component", "admin_auth"),
	}
}

// LoginInput carries a password login attempt.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Login verifies the credentials and records a login log entry.
func (s *AdminAuthService) Login(ctx context.Context, in LoginInput) (model.Admin, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return model.Admin{}, apperrors.Validation(missingCredentialsMsg)
	}

	admin, err := s.findByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "admin lookup failed", "error", err)
		}
		return model.Admin{}, ErrInvalidCredentials
	}
	if !VerifyPassword(admin.PasswordHash, in.Password) {
		s.logger.InfoContext(ctx, "admin login rejected", "admin_id", admin.ID)
		return model.Admin{}, ErrInvalidCredentials
	}

	s.recordLogin(ctx, admin.ID, in.IPAddress, in.UserAgent)
	s.logger.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)
	return admin, nil
}

// SSOEnabled reports whether an identity provider is configured.
func (s *AdminAuthService) SSOEnabled() bool { return s.provider != nil }

// BeginLoginResult contains the result of beginning an SSO flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginSSO starts the identity provider flow.
func (s *AdminAuthService) BeginSSO(ctx context.Context, redirectURL string) (BeginLoginResult, error) {
	if s.provider == nil {
		return BeginLoginResult{}, ErrSSODisabled
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return BeginLoginResult{}, fmt.Errorf("begin auth flow: %w", err)
	}
	return BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an SSO flow.
type CompleteLoginInput struct {
	Code      string
	State     string
	Nonce     string
	IPAddress string
	UserAgent string
}

// CompleteSSO exchanges the code and resolves the identity to an admin by email.
func (s *AdminAuthService) CompleteSSO(ctx context.Context, in CompleteLoginInput) (model.Admin, error) {
	if s.provider == nil {
		return model.Admin{}, ErrSSODisabled
	}
	id, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, State: in.State, Nonce: in.Nonce})
	if err != nil {
		return model.Admin{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	email := model.NormalizeEmail(id.Email)
	if email == "" {
		return model.Admin{}, ErrNoAdminAccount
	}
	admin, err := s.findByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.InfoContext(ctx, "sso identity has no admin account", "subject", id.Subject)
			return model.Admin{}, ErrNoAdminAccount
		}
		return model.Admin{}, err
	}
	s.recordLogin(ctx, admin.ID, in.IPAddress, in.UserAgent)
	s.logger.InfoContext(ctx, "admin logged in via sso", "admin_id", admin.ID)
	return admin, nil
}

// CreateAdmin stores a new admin with a bcrypt password hash.
func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password string) (model.Admin, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.Admin{}, apperrors.Validation(missingCredentialsMsg)
	}
	if !model.ValidEmail(email) {
		return model.Admin{}, apperrors.ValidationField("email", "Invalid email address")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return model.Admin{}, err
	}
	rows, err := s.gateway.Insert(ctx, table.Admins, table.Row{"email": email, "password_hash": hash})
	if err != nil {
		return model.Admin{}, fmt.Errorf("create admin: %w", err)
	}
	if len(rows) == 0 {
		return model.Admin{}, apperrors.Internal("create admin returned no row")
	}
	return model.AdminFromRow(rows[0]), nil
}

func (s *AdminAuthService) findByEmail(ctx context.Context, email string) (model.Admin, error) {
	rows, err := s.gateway.Select(ctx, table.Query{
		Table:   table.Admins,
		Columns: []string{"id", "email", "password_hash"},
		Filters: []table.Filter{table.Eq("email", email)},
		Limit:   1,
	})
	if err != nil {
		return model.Admin{}, fmt.Errorf("find admin: %w", err)
	}
	if len(rows) == 0 {
		return model.Admin{}, apperrors.NotFound("admin not found")
	}
	return model.AdminFromRow(rows[0]), nil
}

// recordLogin is best effort; a failed insert is logged and ignored.
func (s *AdminAuthService) recordLogin(ctx context.Context, adminID, ip, userAgent string) {
	entry := model.AdminLoginLog{
		AdminID:   adminID,
		LoginTime: s.clock.Now(),
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	}
	if _, err := s.gateway.Insert(ctx, table.AdminLoginLogs, entry.Row()); err != nil {
		s.logger.WarnContext(ctx, "login log failed", "admin_id", adminID, "error", err)
	}
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword checks password against a bcrypt hash or a legacy
// hex-encoded SHA-256 digest.
func VerifyPassword(stored, password string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	sum := sha256.Sum256([]byte(password))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) == 1
}
