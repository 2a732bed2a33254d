//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	"github.com/target/eventdesk/internal/domain/table"
)

// Admin is a dashboard operator.
type Admin struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AdminFromRow maps a gateway row.
func AdminFromRow(r table.Row) Admin {
	return Admin{
		ID:           r.String("id"),
		Email:        r.String("email"),
		PasswordHash: r.String("password_hash"),
		CreatedAt:    r.Time("created_at"),
	}
}

// NormalizeEmail trims and lower-cases an admin email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminLoginLog records a sign-in.
type AdminLoginLog struct {
	AdminID   string
	LoginTime time.Time
	IPAddress string
	UserAgent string
	Success   bool
}

// Row converts the log entry into a gateway row.
func (l AdminLoginLog) Row() table.Row {
	ip := l.IPAddress
	if ip == "" {
		ip = "N/A"
	}
	return table.Row{
		"admin_id":   l.AdminID,
		"login_time": l.LoginTime.UTC(),
		"ip_address": ip,
		"user_agent": l.UserAgent,
		"success":    l.Success,
	}
}
