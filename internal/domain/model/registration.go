//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9()\s-]+$`)
)

const (
	minPhoneLen = 7
	maxPhoneLen = 15
)

// RegistrationConflictKey is the compound key that makes a registration unique.
func RegistrationConflictKey() []string { return []string{"event_name", "prn"} }

// ValidEmail reports whether s has a local@domain.tld shape.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidPhone reports whether s is 7 to 15 characters of digits, spaces,
// hyphens and parentheses with an optional leading '+'.
func ValidPhone(s string) bool {
	return len(s) >= minPhoneLen && len(s) <= maxPhoneLen && phoneRe.MatchString(s)
}

// Registration is a stored participant registration.
type Registration struct {
	ID            string    `json:"id"               db:"id"`
	Name          string    `json:"name"             db:"name"`
	Email         string    `json:"email"            db:"email"`
	PRN           string    `json:"prn"              db:"prn"`
	Department    string    `json:"department"       db:"department"`
	Year          string    `json:"year"             db:"year"`
	Phone         string    `json:"phone"            db:"phone"`
	UPI           *string   `json:"upi,omitempty"    db:"upi"`
	TransactionID string    `json:"transaction_id"   db:"transaction_id"`
	EventName     string    `json:"event_name"       db:"event_name"`
	EventDate     string    `json:"event_date"       db:"event_date"`
	EventID       *string   `json:"event_id,omitempty" db:"event_id"`
	CreatedAt     time.Time `json:"created_at"       db:"created_at"`
}

// RegistrationFromRow maps a gateway row.
func RegistrationFromRow(r table.Row) Registration {
	return Registration{
		ID:            r.String("id"),
		Name:          r.String("name"),
		Email:         r.String("email"),
		PRN:           r.String("prn"),
		Department:    r.String("department"),
		Year:          r.String("year"),
		Phone:         r.String("phone"),
		UPI:           r.StringPtr("upi"),
		TransactionID: r.String("transaction_id"),
		EventName:     r.String("event_name"),
		EventDate:     r.String("event_date"),
		EventID:       r.StringPtr("event_id"),
		CreatedAt:     r.Time("created_at"),
	}
}

// RegistrationRequest is the public registration form payload.
type RegistrationRequest struct {
	Name          string
	Email         string
	PRN           string
	Department    string
	Year          string
	Phone         string
	UPI           string
	TransactionID string
	EventName     string
	EventDate     string
}

// Normalize trims every field.
func (r *RegistrationRequest) Normalize() {
	for _, p := range []*string{
		&r.Name, &r.Email, &r.PRN, &r.Department, &r.Year,
		&r.Phone, &r.UPI, &r.TransactionID, &r.EventName, &r.EventDate,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// Validate returns the first failing field as a validation error. Required
// fields are checked in form order, then email and phone shape.
func (r *RegistrationRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"prn", r.PRN},
		{"department", r.Department},
		{"year", r.Year},
		{"phone", r.Phone},
		{"transaction_id", r.TransactionID},
	}
	for _, f := range required {
		if f.value == "" {
			return apperrors.ValidationField(f.field, "Please fill out "+strings.ReplaceAll(f.field, "_", " ")+".")
		}
	}
	if r.EventName == "" {
		return apperrors.ValidationField("event_name", "No event selected.")
	}
	if !ValidEmail(r.Email) {
		return apperrors.ValidationField("email", "Invalid email address")
	}
	if !ValidPhone(r.Phone) {
		return apperrors.ValidationField("phone", "Invalid phone number")
	}
	return nil
}

// Row converts the request into a gateway row.
func (r *RegistrationRequest) Row() table.Row {
	return table.Row{
		"name":           r.Name,
		"email":          r.Email,
		"prn":            r.PRN,
		"department":     r.Department,
		"year":           r.Year,
		"phone":          r.Phone,
		"upi":            nullIfEmpty(r.UPI),
		"transaction_id": r.TransactionID,
		"event_name":     r.EventName,
		"event_date":     r.EventDate,
	}
}
