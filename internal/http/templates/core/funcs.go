package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/target/eventdesk/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	// Location renders timestamps; nil means UTC.
	Location *time.Location
	// Now anchors relative times; nil means time.Now.
	Now func() time.Time
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := deps.Location

	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": func(ts any) string { return uiutil.FormatFriendlyDateTime(toTime(ts), loc) },
		"relativeTime": func(ts any) string {
			t0 := toTime(ts)
			if t0.IsZero() {
				return ""
			}
			return uiutil.FriendlyRelativeTime(t0, now().In(locOrUTC(loc)))
		},
		"eventDate":    func(ts any) string { return uiutil.FormatEventDate(toTime(ts), loc) },
		"eventTime":    func(ts any) string { return uiutil.FormatEventTime(toTime(ts), loc) },
		"timeTag":      createTimeTagFunc(loc),
		"add":          func(a, b int) int { return a + b },
		"formatNumber": formatNumberTemplate,
		"truncateText": TruncateText,
		"deref":        deref,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}
}

func toTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func createTimeTagFunc(loc *time.Location) func(any) template.HTML {
	return func(ts any) template.HTML {
		t0 := toTime(ts)
		if t0.IsZero() {
			return ""
		}
		local := t0.In(locOrUTC(loc))
		// #nosec G203 - The HTML here is constructed from trusted, escaped values only
		return template.HTML(
			fmt.Sprintf(
				"<time datetime=\"%s\" title=\"%s\">%s</time>",
				t0.UTC().Format(time.RFC3339),
				template.HTMLEscapeString(local.Format(time.RFC1123)),
				template.HTMLEscapeString(local.Format(uiutil.FriendlyDateTimeLayout)),
			),
		)
	}
}

// formatNumberTemplate formats an int or int64 with comma separators for thousands.
func formatNumberTemplate(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		return fmt.Sprint(v)
	}

	neg := n < 0
	s := strconv.FormatInt(n, 10)
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		s = withCommas(s)
	}
	if neg {
		return "-" + s
	}
	return s
}

func withCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + (len(s)-1)/3)

	prefix := len(s) % 3
	if prefix == 0 {
		prefix = 3
	}

	b.WriteString(s[:prefix])
	for i := prefix; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// TruncateText truncates a string to a maximum number of runes, adding an ellipsis.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	return uiutil.TruncateWithEllipsis(s, maxLen)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
