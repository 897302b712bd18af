package domain

import "time"

// TokenKey is the single persisted entry holding the bearer credential.
const TokenKey = "session.token"

// Session is the process-wide authentication state. It is authenticated
// exactly when Token is non-empty.
type Session struct {
	Token string
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Claims are read from a JWT-shaped token for display. They are not
// verified and expiry is never enforced client-side.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

func (c Claims) HasExpiry() bool { return !c.ExpiresAt.IsZero() }
