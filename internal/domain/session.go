package domain

import "time"

// Session is the single active login of a browser. The name fields are a
// snapshot taken when the session was created.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Scope identifies one of the two storage lifetimes a browser owns.
type Scope string

const (
	// ScopeEphemeral lives as long as the browser tab.
	ScopeEphemeral Scope = "ephemeral"
	// ScopeDurable survives browser restarts.
	ScopeDurable Scope = "durable"
)
