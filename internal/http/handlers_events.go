package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	domainevents "github.com/target/eventdesk/internal/domain/events"
	"github.com/target/eventdesk/internal/domain/model"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/http/ui/events"
	"github.com/target/eventdesk/internal/http/uiutil"
	"github.com/target/eventdesk/internal/http/validation"
)

const (
	maxDescriptionLen = 4000
	maxVenueLen       = 200
	maxEventTypeLen   = 100
	maxParticipants   = 100000
)

// EventTypeSuggestions are offered in the event form.
//
//nolint:gochecknoglobals // static read-only options
var EventTypeSuggestions = []string{"Workshop", "Seminar", "Hackathon", "Competition", "Conference", "Meetup", "Other"}

func dashboardMeta() PageMeta {
	return PageMeta{Title: "Events - EventDesk", PageTitle: "Events", CurrentPage: PageDashboard}
}

func (h *UIHandlers) newListViewModel() *events.ListViewModel {
	return events.NewListViewModel(events.Options{Service: h.Events, Logger: h.logger(), Location: h.location()})
}

// Dashboard renders the admin event table (?q=&status=).
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	vm := h.newListViewModel()
	vm.Load(r.Context())
	q := r.URL.Query()
	h.renderDashboard(w, r, vm.View(q.Get("q"), domainevents.ParseStatusFilter(q.Get("status"))), http.StatusOK)
}

// EventAction dispatches a typed table action and re-renders the dashboard.
func (h *UIHandlers) EventAction(w http.ResponseWriter, r *http.Request) {
	cmd := events.CommandFromForm(r.PostFormValue)
	vm := h.newListViewModel()
	vm.Load(r.Context())

	status := http.StatusOK
	err := vm.Dispatch(r.Context(), cmd)
	view := vm.View(r.PostFormValue("q"), domainevents.ParseStatusFilter(r.PostFormValue("status")))
	if err != nil {
		status = StatusForError(err)
		view.Alert = apperrors.UserMessage(err, "Unable to complete the action")
	}
	h.renderDashboard(w, r, view, status)
}

func (h *UIHandlers) renderDashboard(w http.ResponseWriter, r *http.Request, view events.View, status int) {
	data := pageData(r, dashboardMeta(), map[string]any{"View": view})
	if s, ok := SessionFromContext(r.Context()); ok {
		data["SessionMinutesLeft"] = sessionRemaining(s, time.Now())
	}
	h.renderPageStatus(w, r, status, data)
}

// eventForm is the raw form state, kept as strings so it can be re-rendered.
type eventForm struct {
	Title            string
	Description      string
	Venue            string
	EventType        string
	EventDate        string
	MaxParticipants  string
	IsVisible        bool
	IsDraft          bool
	IsFeatured       bool
	RegistrationOpen bool
}

func parseEventForm(r *http.Request) eventForm {
	checked := func(name string) bool {
		v := r.PostFormValue(name)
		return v == "on" || v == "true" || v == "1"
	}
	return eventForm{
		Title:            strings.TrimSpace(r.PostFormValue("title")),
		Description:      strings.TrimSpace(r.PostFormValue("description")),
		Venue:            strings.TrimSpace(r.PostFormValue("venue")),
		EventType:        strings.TrimSpace(r.PostFormValue("event_type")),
		EventDate:        strings.TrimSpace(r.PostFormValue("event_date")),
		MaxParticipants:  strings.TrimSpace(r.PostFormValue("max_participants")),
		IsVisible:        checked("is_visible"),
		IsDraft:          checked("is_draft"),
		IsFeatured:       checked("is_featured"),
		RegistrationOpen: checked("registration_open"),
	}
}

func eventFormFrom(e model.Event, loc *time.Location) eventForm {
	f := eventForm{
		Title:            e.Title,
		EventDate:        e.EventDate.In(loc).Format(uiutil.DateTimeInputLayout),
		IsVisible:        e.IsVisible,
		IsDraft:          e.IsDraft,
		IsFeatured:       e.IsFeatured,
		RegistrationOpen: e.RegistrationOpen,
	}
	for dst, src := range map[*string]*string{&f.Description: e.Description, &f.Venue: e.Venue, &f.EventType: e.EventType} {
		if src != nil {
			*dst = *src
		}
	}
	if e.MaxParticipants != nil {
		f.MaxParticipants = strconv.Itoa(*e.MaxParticipants)
	}
	return f
}

func (f eventForm) validate() map[string]string {
	return validation.New().
		Validate("title", f.Title, validation.Required("Title", 200)).
		Validate("description", f.Description, validation.Optional("Description", maxDescriptionLen)).
		Validate("venue", f.Venue, validation.Optional("Venue", maxVenueLen)).
		Validate("event_type", f.EventType, validation.Optional("Event type", maxEventTypeLen)).
		Validate("event_date", f.EventDate,
			validation.DateTime("Event date", uiutil.DateTimeInputLayout, uiutil.DateInputLayout)).
		Validate("max_participants", f.MaxParticipants,
			validation.OptionalIntRange("Max participants", 1, maxParticipants)).
		Errors()
}

// request converts a validated form.
func (f eventForm) request(loc *time.Location) model.EventRequest {
	date, _ := uiutil.ParseDateTimeInput(f.EventDate, loc)
	req := model.EventRequest{
		Title:            f.Title,
		Description:      f.Description,
		Venue:            f.Venue,
		EventType:        f.EventType,
		EventDate:        date,
		IsVisible:        f.IsVisible,
		IsDraft:          f.IsDraft,
		IsFeatured:       f.IsFeatured,
		RegistrationOpen: f.RegistrationOpen,
	}
	if n, err := strconv.Atoi(f.MaxParticipants); err == nil {
		req.MaxParticipants = &n
	}
	return req
}

type eventFormView struct {
	Mode   FormMode
	ID     string
	Form   eventForm
	Errors map[string]string
	Error  string
}

func (h *UIHandlers) renderEventForm(w http.ResponseWriter, r *http.Request, v eventFormView, status int) {
	meta := PageMeta{Title: "New Event - EventDesk", PageTitle: "New Event", CurrentPage: PageEventForm}
	action := "/admin/events"
	if v.Mode == FormModeEdit {
		meta.Title, meta.PageTitle = "Edit Event - EventDesk", "Edit Event"
		action = "/admin/events/" + v.ID
	}
	data := pageData(r, meta, map[string]any{
		"Mode":           string(v.Mode),
		"ID":             v.ID,
		"Action":         action,
		"Form":           v.Form,
		"EventTypes":     EventTypeSuggestions,
		"ErrorMessage":   v.Error,
		"MaxTitleLength": 200,
	})
	if v.Errors != nil {
		data["Errors"] = v.Errors
	}
	h.renderPageStatus(w, r, status, data)
}

// NewEventForm renders an empty event form.
func (h *UIHandlers) NewEventForm(w http.ResponseWriter, r *http.Request) {
	h.renderEventForm(w, r, eventFormView{
		Mode: FormModeCreate,
		Form: eventForm{IsVisible: true, RegistrationOpen: true},
	}, http.StatusOK)
}

// CreateEvent handles the new event form.
func (h *UIHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, eventFormView{Mode: FormModeCreate, Form: parseEventForm(r)}, func(req model.EventRequest) error {
		_, err := h.Events.Create(r.Context(), req)
		return err
	})
}

// EditEventForm renders the form for an existing event.
func (h *UIHandlers) EditEventForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := h.Events.Get(r.Context(), id)
	if err != nil {
		h.eventLookupFailed(w, r, err)
		return
	}
	h.renderEventForm(w, r, eventFormView{Mode: FormModeEdit, ID: id, Form: eventFormFrom(e, h.location())}, http.StatusOK)
}

// UpdateEvent handles the edit event form.
func (h *UIHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.saveEvent(w, r, eventFormView{Mode: FormModeEdit, ID: id, Form: parseEventForm(r)}, func(req model.EventRequest) error {
		_, err := h.Events.Update(r.Context(), id, req)
		return err
	})
}

func (h *UIHandlers) saveEvent(w http.ResponseWriter, r *http.Request, v eventFormView, save func(model.EventRequest) error) {
	if errs := v.Form.validate(); len(errs) > 0 {
		v.Errors, v.Error = errs, errMsgFixBelow
		h.renderEventForm(w, r, v, http.StatusUnprocessableEntity)
		return
	}
	if err := save(v.Form.request(h.location())); err != nil {
		if apperrors.IsNotFound(err) {
			h.NotFound(w, r)
			return
		}
		h.logger().ErrorContext(r.Context(), "failed to save event", "mode", v.Mode, "event_id", v.ID, "error", err)
		if field := apperrors.GetField(err); field != "" {
			v.Errors = map[string]string{field: apperrors.UserMessage(err, "Invalid value")}
		}
		v.Error = apperrors.UserMessage(err, "Failed to save event")
		h.renderEventForm(w, r, v, StatusForError(err))
		return
	}
	redirect(w, r, dashboardPath)
}

// EventRegistrations lists the registrations of one event.
func (h *UIHandlers) EventRegistrations(w http.ResponseWriter, r *http.Request) {
	e, err := h.Events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.eventLookupFailed(w, r, err)
		return
	}
	data := pageData(r, PageMeta{
		Title:       "Registrations - " + e.Title + " - EventDesk",
		PageTitle:   "Registrations: " + e.Title,
		CurrentPage: PageRegistrations,
	}, map[string]any{
		"Event": e,
		"Count": events.CountLabel(e),
	})
	regs, err := h.Events.ListRegistrations(r.Context(), e.ID)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to load registrations", "event_id", e.ID, "error", err)
		data["ErrorMessage"] = "Error loading registrations. Please refresh the page."
	}
	data["Registrations"] = regs
	h.renderPage(w, r, data)
}

func (h *UIHandlers) eventLookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}
	h.logger().ErrorContext(r.Context(), "failed to load event", "error", err)
	h.renderError(w, r, StatusForError(err), "Something went wrong", "The event could not be loaded. Please try again.")
}
