package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/target/eventdesk/internal/domain/events"
	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/ports"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Gateway ports.Gateway // Required
	Logger  *slog.Logger  // Optional
}

// EventService reads and mutates events through the data gateway.
type EventService struct {
	gateway ports.Gateway
	logger  *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(opts EventServiceOptions) *EventService {
	if opts.Gateway == nil {
		panic("Gateway is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{gateway: opts.Gateway, logger: logger.With("component", "events")}
}

func registrationCount() []table.CountEmbed {
	return []table.CountEmbed{{Relation: table.Registrations, ParentKey: "id", ChildKey: "event_id"}}
}

// List returns every event with its registration count, newest first.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.selectEvents(ctx, table.Query{
		Table:  table.Events,
		Order:  []table.Order{{Column: "created_at", Desc: true}},
		Counts: registrationCount(),
	})
}

// ListPublished returns visible, non-draft events by date.
func (s *EventService) ListPublished(ctx context.Context) ([]model.Event, error) {
	return s.selectEvents(ctx, table.Query{
		Table: table.Events,
		Filters: []table.Filter{
			table.Eq("is_visible", true),
			table.Eq("is_draft", false),
		},
		Order:  []table.Order{{Column: "event_date"}},
		Counts: registrationCount(),
	})
}

// Get returns one event. Malformed ids are reported as not found.
func (s *EventService) Get(ctx context.Context, id string) (model.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Event{}, apperrors.NotFound("Event not found")
	}
	evs, err := s.selectEvents(ctx, table.Query{
		Table:   table.Events,
		Filters: []table.Filter{table.Eq("id", id)},
		Limit:   1,
		Counts:  registrationCount(),
	})
	if err != nil {
		return model.Event{}, err
	}
	if len(evs) == 0 {
		return model.Event{}, apperrors.NotFound("Event not found")
	}
	return evs[0], nil
}

// FindByTitle returns the first event with exactly this title.
func (s *EventService) FindByTitle(ctx context.Context, title string) (model.Event, error) {
	rows, err := s.gateway.Select(ctx, table.Query{
		Table:   table.Events,
		Filters: []table.Filter{table.Eq("title", title)},
		Order:   []table.Order{{Column: "created_at", Desc: true}},
		Limit:   1,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("find event by title: %w", err)
	}
	if len(rows) == 0 {
		return model.Event{}, apperrors.NotFound("Event not found")
	}
	return model.EventFromRow(rows[0]), nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, req model.EventRequest) (model.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.Event{}, err
	}
	rows, err := s.gateway.Insert(ctx, table.Events, req.Row())
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	if len(rows) == 0 {
		return model.Event{}, apperrors.Internal("create event returned no row")
	}
	ev := model.EventFromRow(rows[0])
	s.logger.InfoContext(ctx, "event created", "event_id", ev.ID, "title", ev.Title)
	return ev, nil
}

// Update validates and overwrites the editable fields of an event.
func (s *EventService) Update(ctx context.Context, id string, req model.EventRequest) (model.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.Event{}, err
	}
	if err := s.update(ctx, id, req.Row()); err != nil {
		return model.Event{}, err
	}
	s.logger.InfoContext(ctx, "event updated", "event_id", id)
	return s.Get(ctx, id)
}

// SetVisibility shows or hides an event.
func (s *EventService) SetVisibility(ctx context.Context, id string, visible bool) error {
	if err := s.update(ctx, id, table.Row{"is_visible": visible}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "event visibility changed", "event_id", id, "visible", visible)
	return nil
}

// Delete removes an event. Its registrations are kept.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("Event not found")
	}
	n, err := s.gateway.Delete(ctx, table.Events, table.Eq("id", id))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("Event not found")
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", id)
	return nil
}

// ListRegistrations returns the registrations linked to an event, newest first.
func (s *EventService) ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, apperrors.NotFound("Event not found")
	}
	rows, err := s.gateway.Select(ctx, table.Query{
		Table:   table.Registrations,
		Filters: []table.Filter{table.Eq("event_id", eventID)},
		Order:   []table.Order{{Column: "created_at", Desc: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	out := make([]model.Registration, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.RegistrationFromRow(r))
	}
	return out, nil
}

func (s *EventService) update(ctx context.Context, id string, values table.Row) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("Event not found")
	}
	n, err := s.gateway.Update(ctx, table.Events, values, table.Eq("id", id))
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("Event not found")
	}
	return nil
}

func (s *EventService) selectEvents(ctx context.Context, q table.Query) ([]model.Event, error) {
	rows, err := s.gateway.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events.FromRows(rows)
}
