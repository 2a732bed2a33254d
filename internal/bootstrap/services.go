package bootstrap

import (
	"errors"
	"log/slog"

	"github.com/target/eventdesk/internal/observability/statsd"
	"github.com/target/eventdesk/internal/ports"
	"github.com/target/eventdesk/internal/service"
)

// ServiceDeps contains the adapters the services are built from.
type ServiceDeps struct {
	Gateway  ports.Gateway      // Required
	Store    ports.SessionStore // Required
	Provider ports.AuthProvider // Optional: enables SSO
	Clock    ports.TimeProvider // Optional
	Metrics  statsd.Sink        // Optional
	Logger   *slog.Logger
}

// ServiceContainer holds the application services.
type ServiceContainer struct {
	Events        *service.EventService
	Registrations *service.RegistrationService
	Auth          *service.AdminAuthService
	Sessions      *service.SessionManager
}

// NewServices wires the application services over deps.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Gateway == nil {
		return ServiceContainer{}, errors.New("gateway is required")
	}
	if deps.Store == nil {
		return ServiceContainer{}, errors.New("session store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	events := service.NewEventService(service.EventServiceOptions{Gateway: deps.Gateway, Logger: logger})
	return ServiceContainer{
		Events: events,
		Registrations: service.NewRegistrationService(service.RegistrationServiceOptions{
			Gateway: deps.Gateway,
			Events:  events,
			Logger:  logger,
			Metrics: deps.Metrics,
		}),
		Auth: service.NewAdminAuthService(service.AdminAuthServiceOptions{
			Gateway:  deps.Gateway,
			Provider: deps.Provider,
			Deps:     service.AdminAuthDeps{Clock: deps.Clock, Logger: logger},
		}),
		Sessions: service.NewSessionManager(service.SessionManagerOptions{
			Store:  deps.Store,
			Clock:  deps.Clock,
			Logger: logger,
		}),
	}, nil
}
