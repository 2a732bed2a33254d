// Package events holds the pure logic behind the admin event table:
// statistics, search and status filtering, and status badges.
package events

import (
	"strings"

	"github.com/target/eventdesk/internal/domain/model"
)

// Stats summarises a list of events.
type Stats struct {
	Total              int
	Published          int
	Drafts             int
	TotalRegistrations int
}

// ComputeStats derives summary statistics. Published counts events that are
// visible and not drafts.
func ComputeStats(events []model.Event) Stats {
	s := Stats{Total: len(events)}
	for _, e := range events {
		if e.IsPublished() {
			s.Published++
		}
		if e.IsDraft {
			s.Drafts++
		}
		s.TotalRegistrations += e.RegistrationCount
	}
	return s
}

// StatusFilter narrows events by lifecycle status.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPublished StatusFilter = "published"
	StatusDraft     StatusFilter = "draft"
	StatusFeatured  StatusFilter = "featured"
	StatusClosed    StatusFilter = "closed"
)

// StatusFilters lists the filters in display order.
func StatusFilters() []StatusFilter {
	return []StatusFilter{StatusAll, StatusPublished, StatusDraft, StatusFeatured, StatusClosed}
}

// ParseStatusFilter normalizes v; unknown values become StatusAll.
func ParseStatusFilter(v string) StatusFilter {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(v)))
	switch f {
	case StatusPublished, StatusDraft, StatusFeatured, StatusClosed:
		return f
	default:
		return StatusAll
	}
}

// Label is the human readable filter name.
func (f StatusFilter) Label() string {
	switch f {
	case StatusPublished:
		return "Published"
	case StatusDraft:
		return "Drafts"
	case StatusFeatured:
		return "Featured"
	case StatusClosed:
		return "Registration closed"
	default:
		return "All events"
	}
}

// Match reports whether e satisfies the filter.
func (f StatusFilter) Match(e model.Event) bool {
	switch f {
	case StatusPublished:
		return e.IsPublished()
	case StatusDraft:
		return e.IsDraft
	case StatusFeatured:
		return e.IsFeatured
	case StatusClosed:
		return !e.RegistrationOpen
	default:
		return true
	}
}

// MatchSearch reports whether term is a case-insensitive substring of the
// title, description or venue. An empty term matches everything.
func MatchSearch(e model.Event, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title), term) {
		return true
	}
	for _, f := range []*string{e.Description, e.Venue} {
		if f != nil && strings.Contains(strings.ToLower(*f), term) {
			return true
		}
	}
	return false
}

// Filter applies the search term and then the status filter, preserving
// input order. The input slice is never modified.
func Filter(events []model.Event, search string, status StatusFilter) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if MatchSearch(e, search) && status.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Badge is a status label rendered next to an event.
type Badge struct {
	Label string
	Class string
}

// Badges derives status badges. Draft suppresses Published/Hidden;
// Featured and Closed are added independently.
func Badges(e model.Event) []Badge {
	var out []Badge
	switch {
	case e.IsDraft:
		out = append(out, Badge{Label: "Draft", Class: "badge-warning"})
	case e.IsVisible:
		out = append(out, Badge{Label: "Published", Class: "badge-success"})
	default:
		out = append(out, Badge{Label: "Hidden", Class: "badge-secondary"})
	}
	if e.IsFeatured {
		out = append(out, Badge{Label: "Featured", Class: "badge-info"})
	}
	if !e.RegistrationOpen {
		out = append(out, Badge{Label: "Closed", Class: "badge-danger"})
	}
	return out
}
