// Package devseed fills a development database with a demo admin and a
// handful of events. Re-running it is safe: existing rows are left alone.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/eventdesk/internal/domain/model"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Events *service.EventService
	Auth   *service.AdminAuthService
}

// Options controls what gets seeded.
type Options struct {
	AdminEmail    string
	AdminPassword string
	// Now anchors the seeded event dates; defaults to time.Now.
	Now time.Time
}

// Run executes the full development seeding workflow.
func Run(ctx context.Context, svcs Services, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	failures := 0
	if opts.AdminEmail != "" {
		failures += seedAdmin(ctx, svcs.Auth, opts, logger)
	}
	failures += seedEvents(ctx, svcs.Events, opts.Now, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedAdmin(ctx context.Context, svc *service.AdminAuthService, opts Options, logger *slog.Logger) int {
	_, err := svc.CreateAdmin(ctx, opts.AdminEmail, opts.AdminPassword)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "created admin", "email", opts.AdminEmail)
	case apperrors.IsConflict(err):
		logger.InfoContext(ctx, "admin already exists", "email", opts.AdminEmail)
	default:
		logger.ErrorContext(ctx, "failed to create admin", "email", opts.AdminEmail, "error", err)
		return 1
	}
	return 0
}

// DemoEvents returns the seeded events with dates relative to now.
func DemoEvents(now time.Time) []model.EventRequest {
	day := func(n int, hour int) time.Time {
		d := now.AddDate(0, 0, n)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}
	limit := 60
	return []model.EventRequest{
		{
			Title:            "Intro to Go Workshop",
			Description:      "Hands-on session covering goroutines, channels and the standard library.",
			Venue:            "Lab 3, Main Building",
			EventType:        "Workshop",
			EventDate:        day(7, 10),
			IsVisible:        true,
			IsFeatured:       true,
			RegistrationOpen: true,
			MaxParticipants:  &limit,
		},
		{
			Title:            "Campus Hackathon",
			Description:      "Twenty-four hours of building. Teams of up to four.",
			Venue:            "Auditorium",
			EventType:        "Hackathon",
			EventDate:        day(21, 9),
			IsVisible:        true,
			RegistrationOpen: true,
		},
		{
			Title:     "Alumni Talk: Shipping Software",
			Venue:     "Seminar Hall",
			EventType: "Seminar",
			EventDate: day(30, 15),
			IsVisible: true,
			IsDraft:   true,
		},
		{
			Title:     "Robotics Meetup",
			EventType: "Meetup",
			EventDate: day(-10, 17),
			IsVisible: false,
		},
	}
}

func seedEvents(ctx context.Context, svc *service.EventService, now time.Time, logger *slog.Logger) int {
	failures := 0
	for _, req := range DemoEvents(now) {
		created, err := createEvent(ctx, svc, req)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "title", req.Title, "error", err)
			failures++
			continue
		}
		msg := "event already exists"
		if created {
			msg = "created event"
		}
		logger.InfoContext(ctx, msg, "title", req.Title)
	}
	return failures
}

func createEvent(ctx context.Context, svc *service.EventService, req model.EventRequest) (bool, error) {
	_, err := svc.FindByTitle(ctx, req.Title)
	if err == nil {
		return false, nil
	}
	if !apperrors.IsNotFound(err) {
		return false, err
	}
	if _, err := svc.Create(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
