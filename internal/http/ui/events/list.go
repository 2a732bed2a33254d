// Package events holds the admin event table view-model: loading, filtering,
// status badges and the typed actions the table can dispatch.
package events

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainevents "github.com/target/eventdesk/internal/domain/events"
	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/http/uiutil"
)

// User-visible messages.
const (
	LoadErrorMessage       = "Error loading events. Please refresh the page."
	VisibilityErrorMessage = "Failed to update event visibility"
	DeleteErrorMessage     = "Failed to delete event"
	EmptyTitle             = "No events found"
	EmptyHint              = "Create your first event to get started"
)

// Service is the subset of the event service the view-model needs.
type Service interface {
	List(ctx context.Context) ([]model.Event, error)
	SetVisibility(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) error
}

// Options configures a ListViewModel.
type Options struct {
	Service  Service // Required
	Logger   *slog.Logger
	Location *time.Location // Used to render dates; defaults to UTC.
}

// ListViewModel is the state behind the admin event table. It is built per
// request and never shared between goroutines.
type ListViewModel struct {
	svc    Service
	logger *slog.Logger
	loc    *time.Location

	events        []model.Event
	loadErr       string
	alert         string
	pendingDelete string
}

// NewListViewModel constructs a view-model. It panics without a Service.
func NewListViewModel(opts Options) *ListViewModel {
	if opts.Service == nil {
		panic("Service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ListViewModel{svc: opts.Service, logger: logger.With("component", "event_list"), loc: loc}
}

// Load fetches every event with its registration count. On failure the
// view-model holds no events and a load error.
func (vm *ListViewModel) Load(ctx context.Context) {
	vm.events = nil
	vm.loadErr = ""

	list, err := vm.svc.List(ctx)
	if err != nil {
		vm.logger.ErrorContext(ctx, "failed to load events", "error", err)
		vm.loadErr = LoadErrorMessage
		return
	}
	vm.events = list
}

// Reload discards cached events, the load error and any pending delete, then loads.
func (vm *ListViewModel) Reload(ctx context.Context) {
	vm.pendingDelete = ""
	vm.Load(ctx)
}

// Events returns the cached events.
func (vm *ListViewModel) Events() []model.Event { return vm.events }

// LoadError returns the user-visible load error, if any.
func (vm *ListViewModel) LoadError() string { return vm.loadErr }

// Alert returns the message of the last failed action, if any.
func (vm *ListViewModel) Alert() string { return vm.alert }

// PendingDelete returns the id awaiting delete confirmation.
func (vm *ListViewModel) PendingDelete() string { return vm.pendingDelete }

// SetVisibility changes an event's visibility and reloads on success.
func (vm *ListViewModel) SetVisibility(ctx context.Context, id string, visible bool) {
	vm.alert = ""
	if err := vm.svc.SetVisibility(ctx, id, visible); err != nil {
		vm.logger.ErrorContext(ctx, "failed to update event visibility", "event_id", id, "error", err)
		vm.alert = VisibilityErrorMessage
		return
	}
	vm.Reload(ctx)
}

// Delete removes an event and reloads on success.
func (vm *ListViewModel) Delete(ctx context.Context, id string) {
	vm.alert = ""
	if err := vm.svc.Delete(ctx, id); err != nil {
		vm.logger.ErrorContext(ctx, "failed to delete event", "event_id", id, "error", err)
		vm.alert = DeleteErrorMessage
		return
	}
	vm.Reload(ctx)
}

// Row is one rendered line of the event table.
type Row struct {
	ID          string
	Title       string
	Venue       string
	Date        string
	Time        string
	Type        string
	Count       string
	Badges      []domainevents.Badge
	Visible     bool
	ToggleLabel string
	// RegisterQuery is the encoded query of the public registration link.
	RegisterQuery string
}

// StatusOption is one entry of the status filter control.
type StatusOption struct {
	Value    string
	Label    string
	Selected bool
}

// View is the template-ready projection of the view-model.
type View struct {
	Stats         domainevents.Stats
	Rows          []Row
	Search        string
	Status        domainevents.StatusFilter
	StatusOptions []StatusOption
	LoadError     string
	Alert         string
	PendingDelete *Row
	Empty         bool
	EmptyTitle    string
	EmptyHint     string
}

// View projects the cached events through the search term and status filter.
// Stats always cover the unfiltered list.
func (vm *ListViewModel) View(search string, status domainevents.StatusFilter) View {
	search = strings.TrimSpace(search)
	v := View{
		Stats:      domainevents.ComputeStats(vm.events),
		Search:     search,
		Status:     status,
		LoadError:  vm.loadErr,
		Alert:      vm.alert,
		EmptyTitle: EmptyTitle,
		EmptyHint:  EmptyHint,
	}
	for _, f := range domainevents.StatusFilters() {
		v.StatusOptions = append(v.StatusOptions, StatusOption{Value: string(f), Label: f.Label(), Selected: f == status})
	}
	for _, e := range domainevents.Filter(vm.events, search, status) {
		v.Rows = append(v.Rows, vm.row(e))
	}
	if vm.pendingDelete != "" {
		for _, e := range vm.events {
			if e.ID == vm.pendingDelete {
				r := vm.row(e)
				v.PendingDelete = &r
				break
			}
		}
	}
	v.Empty = vm.loadErr == "" && len(v.Rows) == 0
	return v
}

func (vm *ListViewModel) row(e model.Event) Row {
	r := Row{
		ID:            e.ID,
		Title:         e.Title,
		Date:          uiutil.FormatEventDate(e.EventDate, vm.loc),
		Time:          uiutil.FormatEventTime(e.EventDate, vm.loc),
		Type:          e.TypeLabel(),
		Count:         CountLabel(e),
		Badges:        domainevents.Badges(e),
		Visible:       e.IsVisible,
		ToggleLabel:   "Show",
		RegisterQuery: RegisterQuery(e, vm.loc),
	}
	if e.Venue != nil {
		r.Venue = *e.Venue
	}
	if e.IsVisible {
		r.ToggleLabel = "Hide"
	}
	return r
}

// CountLabel renders the registration count, with "/ max" when a limit is set.
func CountLabel(e model.Event) string {
	s := strconv.Itoa(e.RegistrationCount)
	if e.MaxParticipants != nil {
		s += " / " + strconv.Itoa(*e.MaxParticipants)
	}
	return s
}

// RegisterQuery builds the "event=&date=" query that prefills the registration form.
func RegisterQuery(e model.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return "event=" + url.QueryEscape(e.Title) + "&date=" + url.QueryEscape(e.EventDate.In(loc).Format(uiutil.DateInputLayout))
}
