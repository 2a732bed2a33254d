//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
)

const (
	maxEventTitleLen = 200
	// DefaultEventType is shown when an event has no type.
	DefaultEventType = "Other"
)

// Event is an event record with its aggregated registration count.
type Event struct {
	ID                string    `json:"id"                         db:"id"`
	Title             string    `json:"title"                      db:"title"`
	Description       *string   `json:"description,omitempty"      db:"description"`
	Venue             *string   `json:"venue,omitempty"            db:"venue"`
	EventType         *string   `json:"event_type,omitempty"       db:"event_type"`
	EventDate         time.Time `json:"event_date"                 db:"event_date"`
	IsVisible         bool      `json:"is_visible"                 db:"is_visible"`
	IsDraft           bool      `json:"is_draft"                   db:"is_draft"`
	IsFeatured        bool      `json:"is_featured"                db:"is_featured"`
	RegistrationOpen  bool      `json:"registration_open"          db:"registration_open"`
	MaxParticipants   *int      `json:"max_participants,omitempty" db:"max_participants"`
	CreatedAt         time.Time `json:"created_at"                 db:"created_at"`
	RegistrationCount int       `json:"registration_count"         db:"-"`
}

// IsPublished reports whether the event is publicly listed.
func (e Event) IsPublished() bool { return !e.IsDraft && e.IsVisible }

// TypeLabel returns the event type or DefaultEventType.
func (e Event) TypeLabel() string {
	if e.EventType == nil || strings.TrimSpace(*e.EventType) == "" {
		return DefaultEventType
	}
	return *e.EventType
}

// EventFromRow maps a gateway row. The registration count is left at zero;
// callers decode the count embed separately.
func EventFromRow(r table.Row) Event {
	e := Event{
		ID:               r.String("id"),
		Title:            r.String("title"),
		Description:      r.StringPtr("description"),
		Venue:            r.StringPtr("venue"),
		EventType:        r.StringPtr("event_type"),
		EventDate:        r.Time("event_date"),
		IsVisible:        r.Bool("is_visible"),
		IsDraft:          r.Bool("is_draft"),
		IsFeatured:       r.Bool("is_featured"),
		RegistrationOpen: r.Bool("registration_open"),
		CreatedAt:        r.Time("created_at"),
	}
	if n, ok := r.Int("max_participants"); ok {
		v := int(n)
		e.MaxParticipants = &v
	}
	return e
}

// EventRequest carries the editable fields of an event.
type EventRequest struct {
	Title            string
	Description      string
	Venue            string
	EventType        string
	EventDate        time.Time
	IsVisible        bool
	IsDraft          bool
	IsFeatured       bool
	RegistrationOpen bool
	MaxParticipants  *int
}

// Normalize trims text fields.
func (r *EventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Venue = strings.TrimSpace(r.Venue)
	r.EventType = strings.TrimSpace(r.EventType)
}

// Validate checks the request and returns a field validation error.
func (r *EventRequest) Validate() error {
	if r.Title == "" {
		return apperrors.ValidationField("title", "Title is required")
	}
	if utf8.RuneCountInString(r.Title) > maxEventTitleLen {
		return apperrors.ValidationField("title", "Title is too long")
	}
	if r.EventDate.IsZero() {
		return apperrors.ValidationField("event_date", "Event date is required")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		return apperrors.ValidationField("max_participants", "Max participants must be a positive number")
	}
	return nil
}

// Row converts the request into a gateway row. Empty optional text is stored as null.
func (r *EventRequest) Row() table.Row {
	row := table.Row{
		"title":             r.Title,
		"description":       nullIfEmpty(r.Description),
		"venue":             nullIfEmpty(r.Venue),
		"event_type":        nullIfEmpty(r.EventType),
		"event_date":        r.EventDate.UTC(),
		"is_visible":        r.IsVisible,
		"is_draft":          r.IsDraft,
		"is_featured":       r.IsFeatured,
		"registration_open": r.RegistrationOpen,
		"max_participants":  nil,
	}
	if r.MaxParticipants != nil {
		row["max_participants"] = *r.MaxParticipants
	}
	return row
}

// RequestFromEvent copies an event into an editable request.
func RequestFromEvent(e Event) EventRequest {
	return EventRequest{
		Title:            e.Title,
		Description:      deref(e.Description),
		Venue:            deref(e.Venue),
		EventType:        deref(e.EventType),
		EventDate:        e.EventDate,
		IsVisible:        e.IsVisible,
		IsDraft:          e.IsDraft,
		IsFeatured:       e.IsFeatured,
		RegistrationOpen: e.RegistrationOpen,
		MaxParticipants:  e.MaxParticipants,
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
