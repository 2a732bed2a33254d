package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	obserrors "github.com/target/eventdesk/internal/observability/errors"
	"github.com/target/eventdesk/internal/observability/statsd"
	"github.com/target/eventdesk/internal/ports"
)

const registrationMetric = "registrations.submitted"

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Gateway ports.Gateway // Required
	Events  *EventService // Optional: links registrations to events by title
	Logger  *slog.Logger  // Optional
	Metrics statsd.Sink   // Optional
}

// RegistrationService accepts public registrations.
type RegistrationService struct {
	gateway ports.Gateway
	events  *EventService
	logger  *slog.Logger
	metrics statsd.Sink
	flight  singleflight.Group
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(opts RegistrationServiceOptions) *RegistrationService {
	if opts.Gateway == nil {
		panic("Gateway is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = statsd.Nop{}
	}
	return &RegistrationService{
		gateway: opts.Gateway,
		events:  opts.Events,
		logger:  logger.With("component", "registrations"),
		metrics: metrics,
	}
}

// Submit validates req and upserts it on (event_name, prn). A resubmission
// overwrites the earlier record. Concurrent identical submissions share one
// gateway write.
func (s *RegistrationService) Submit(ctx context.Context, req model.RegistrationRequest) (model.Registration, error) {
	reg, err := s.submit(ctx, req)
	result := "ok"
	if err != nil {
		result = obserrors.Classify(err)
	}
	s.metrics.Count(registrationMetric, 1, map[string]string{"result": result})
	return reg, err
}

func (s *RegistrationService) submit(ctx context.Context, req model.RegistrationRequest) (model.Registration, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.Registration{}, err
	}

	// Shared writes are detached from any single caller's cancellation.
	ch := s.flight.DoChan(flightKey(req), func() (any, error) {
		return s.upsert(context.WithoutCancel(ctx), req)
	})
	select {
	case <-ctx.Done():
		return model.Registration{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Registration{}, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "duplicate registration collapsed", "event_name", req.EventName)
		}
		return res.Val.(model.Registration), nil
	}
}

// flightKey covers the whole normalized payload so only identical
// submissions share a write.
func flightKey(req model.RegistrationRequest) string {
	return strings.Join([]string{
		req.EventName, req.PRN, req.Name, req.Email, req.Department, req.Year,
		req.Phone, req.UPI, req.TransactionID, req.EventDate,
	}, "\x00")
}

func (s *RegistrationService) upsert(ctx context.Context, req model.RegistrationRequest) (model.Registration, error) {
	row := req.Row()
	if s.events != nil {
		ev, err := s.events.FindByTitle(ctx, req.EventName)
		switch {
		case err == nil:
			row["event_id"] = ev.ID
		case apperrors.IsNotFound(err):
			s.logger.InfoContext(ctx, "registration for unknown event title", "event_name", req.EventName)
		default:
			return model.Registration{}, err
		}
	}

	out, err := s.gateway.Upsert(ctx, table.Registrations, row, model.RegistrationConflictKey())
	if err != nil {
		return model.Registration{}, fmt.Errorf("save registration: %w", err)
	}
	reg := model.RegistrationFromRow(out)
	s.logger.InfoContext(ctx, "registration saved", "registration_id", reg.ID, "event_name", reg.EventName)
	return reg, nil
}
