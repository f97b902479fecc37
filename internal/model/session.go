package model

import "time"

// View identifies the page a session is currently on
type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewHome     View = "home"
	ViewPredict  View = "predict"
	ViewHistory  View = "history"
)

// ParseView converts a string into a View
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewLogin, ViewRegister, ViewHome, ViewPredict, ViewHistory:
		return v, nil
	default:
		return "", ErrInvalidView
	}
}

// RequiresAuth reports whether the view is only reachable by an authenticated user
func (v View) RequiresAuth() bool {
	switch v {
	case ViewHome, ViewPredict, ViewHistory:
		return true
	default:
		return false
	}
}

// Session tracks the identity and current view of one client
type Session struct {
	Token     string
	Username  string // empty while anonymous
	View      View
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsAuthenticated reports whether a user is logged in on this session
func (s *Session) IsAuthenticated() bool {
	return s.Username != ""
}

// State returns the session state as identity@view, e.g. "anonymous@login"
func (s *Session) State() string {
	who := "anonymous"
	if s.IsAuthenticated() {
		who = "authenticated"
	}
	return who + "@" + string(s.View)
}

// IsExpired reports whether the session has expired at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
