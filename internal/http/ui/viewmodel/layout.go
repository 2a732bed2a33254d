package viewmodel

// User represents the signed-in admin exposed to templates.
type User struct {
	Email string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
	// SessionCheckSeconds drives the admin layout's session poll; zero disables it.
	SessionCheckSeconds int
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
