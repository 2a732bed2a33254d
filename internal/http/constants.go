package httpx

// Page identifiers used in templates and navigation.
const (
	PageLogin         = "login"
	PageDashboard     = "dashboard"
	PageEventForm     = "event-form"
	PageRegistrations = "registrations"

	// Public pages.
	PageEvents     = "events"
	PageRegister   = "register"
	PageRegistered = "registered"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Cookie names.
const (
	// TabScopeCookie identifies the browser session whose admin session
	// fields live in the session store.
	TabScopeCookie   = "desk_tab"
	oauthStateCookie = "desk_oauth_state"
	oauthNonceCookie = "desk_oauth_nonce"
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	// FormModeEdit indicates the form is in edit mode.
	FormModeEdit FormMode = "edit"
	// FormModeCreate indicates the form is in create mode.
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLogin:         "login-content",
	PageDashboard:     "dashboard-content",
	PageEventForm:     "event-form-content",
	PageRegistrations: "registrations-content",
	PageEvents:        "events-content",
	PageRegister:      "register-content",
	PageRegistered:    "registered-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
