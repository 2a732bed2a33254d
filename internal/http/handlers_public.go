package httpx

import (
	"net/http"
	"strings"

	"github.com/target/eventdesk/internal/domain/model"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/http/ui/events"
	"github.com/target/eventdesk/internal/http/uiutil"
)

const (
	// RegistrationSuccessMessage is shown on the confirmation view.
	RegistrationSuccessMessage = "Registration successful!"
	unexpectedErrorMessage     = "Unexpected error. Please try again."
	publicDescriptionLen       = 240
)

// YearOptions populate the registration form's year select.
//
//nolint:gochecknoglobals // static read-only options
var YearOptions = []string{"First Year", "Second Year", "Third Year", "Final Year"}

// publicEvent is one card of the public event list.
type publicEvent struct {
	Title         string
	Description   string
	Venue         string
	Type          string
	Date          string
	Time          string
	Featured      bool
	Open          bool
	Count         string
	RegisterQuery string
}

// PublicEvents lists published events with links to the registration form.
func (h *UIHandlers) PublicEvents(w http.ResponseWriter, r *http.Request) {
	data := pageData(r, PageMeta{Title: "Events - EventDesk", PageTitle: "Upcoming Events", CurrentPage: PageEvents}, nil)

	list, err := h.Events.ListPublished(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to load published events", "error", err)
		data["ErrorMessage"] = "Events are unavailable right now. Please try again later."
	}
	loc := h.location()
	cards := make([]publicEvent, 0, len(list))
	for _, e := range list {
		c := publicEvent{
			Title:         e.Title,
			Type:          e.TypeLabel(),
			Date:          uiutil.FormatEventDate(e.EventDate, loc),
			Time:          uiutil.FormatEventTime(e.EventDate, loc),
			Featured:      e.IsFeatured,
			Open:          e.RegistrationOpen,
			Count:         events.CountLabel(e),
			RegisterQuery: events.RegisterQuery(e, loc),
		}
		if e.Description != nil {
			c.Description = uiutil.TruncateWithEllipsis(*e.Description, publicDescriptionLen)
		}
		if e.Venue != nil {
			c.Venue = *e.Venue
		}
		cards = append(cards, c)
	}
	data["Events"] = cards
	h.renderPage(w, r, data)
}

func registerMeta() PageMeta {
	return PageMeta{Title: "Register - EventDesk", PageTitle: "Event Registration", CurrentPage: PageRegister}
}

// RegisterForm renders the registration form prefilled from ?event=&date=.
func (h *UIHandlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderRegisterForm(w, r, model.RegistrationRequest{
		EventName: strings.TrimSpace(q.Get("event")),
		EventDate: strings.TrimSpace(q.Get("date")),
	}, "", http.StatusOK)
}

func (h *UIHandlers) renderRegisterForm(w http.ResponseWriter, r *http.Request, form model.RegistrationRequest, msg string, status int) {
	h.renderPageStatus(w, r, status, pageData(r, registerMeta(), map[string]any{
		"Form":         form,
		"Years":        YearOptions,
		"ErrorMessage": msg,
	}))
}

func parseRegistrationForm(r *http.Request) model.RegistrationRequest {
	return model.RegistrationRequest{
		Name:          r.PostFormValue("name"),
		Email:         r.PostFormValue("email"),
		PRN:           r.PostFormValue("prn"),
		Department:    r.PostFormValue("department"),
		Year:          r.PostFormValue("year"),
		Phone:         r.PostFormValue("phone"),
		UPI:           r.PostFormValue("upi"),
		TransactionID: r.PostFormValue("transaction_id"),
		EventName:     r.PostFormValue("event_name"),
		EventDate:     r.PostFormValue("event_date"),
	}
}

// Register submits a registration. Failures re-render the form with the
// submitted values; success shows the confirmation view.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	form := parseRegistrationForm(r)
	reg, err := h.Registrations.Submit(r.Context(), form)
	if err != nil {
		form.Normalize()
		h.renderRegisterForm(w, r, form, registrationErrorMessage(err), StatusForError(err))
		return
	}
	h.renderPage(w, r, pageData(r, PageMeta{
		Title:       "Registered - EventDesk",
		PageTitle:   "Registration Complete",
		CurrentPage: PageRegistered,
	}, map[string]any{
		"Message":      RegistrationSuccessMessage,
		"Registration": reg,
	}))
}

// registrationErrorMessage shows validation messages as is and prefixes
// gateway failures with "Failed: ".
func registrationErrorMessage(err error) string {
	if apperrors.IsValidation(err) {
		return apperrors.UserMessage(err, unexpectedErrorMessage)
	}
	return "Failed: " + apperrors.UserMessage(err, unexpectedErrorMessage)
}
