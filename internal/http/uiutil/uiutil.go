package uiutil

import (
	"strconv"
	"strings"
	"time"
)

const (
	FriendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"
	EventDateLayout        = "Jan 2, 2006"
	EventTimeLayout        = "3:04 PM"
	// DateInputLayout matches the value format of <input type="date">.
	DateInputLayout = "2006-01-02"
	// DateTimeInputLayout matches the value format of <input type="datetime-local">.
	DateTimeInputLayout = "2006-01-02T15:04"
)

// FriendlyRelativeTime returns a human-friendly description of how long ago t occurred
// relative to now. Times in the future are treated as "just now".
func FriendlyRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return "just now"
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	default:
		return FormatFriendlyDateTime(t, now.Location())
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// FormatFriendlyDateTime renders t in loc. A nil loc means UTC.
func FormatFriendlyDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return in(t, loc).Format(FriendlyDateTimeLayout)
}

// FormatEventDate renders the calendar date of an event, e.g. "Mar 15, 2025".
func FormatEventDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return in(t, loc).Format(EventDateLayout)
}

// FormatEventTime renders the wall clock time of an event, e.g. "6:30 PM".
func FormatEventTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return in(t, loc).Format(EventTimeLayout)
}

// ParseDateTimeInput accepts a datetime-local or plain date form value in loc.
func ParseDateTimeInput(v string, loc *time.Location) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{DateTimeInputLayout, DateInputLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TruncateWithEllipsis shortens text to the provided rune limit and appends an ellipsis when truncated.
func TruncateWithEllipsis(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}
