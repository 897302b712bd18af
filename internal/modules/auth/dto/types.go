package dto

import "time"

type LoginInput struct {
	Identifier string
	Secret     string
}

type LoginOutput struct {
	Authenticated bool
	Subject       string
}

type StatusOutput struct {
	Authenticated bool
	Subject       string
	ExpiresAt     time.Time
}
