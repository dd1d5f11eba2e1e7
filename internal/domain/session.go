package domain

import "time"

// Session records a live authenticated session. The ID matches the jti claim
// of the JWT handed to the client; the server side is the sole authority on
// whether a session is still valid.
type Session struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
