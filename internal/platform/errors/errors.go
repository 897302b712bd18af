package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoCredential     = errors.New("no stored credential")
	ErrEmptyDocument    = errors.New("document is empty")
)

// BackendError is the single shape every failed backend call is normalized to.
// Status is 0 when no response was received.
type BackendError struct {
	Status  int
	Detail  string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *BackendError) Unwrap() error { return e.Err }

// Transport reports whether the call failed before any response arrived.
func (e *BackendError) Transport() bool { return e.Status == 0 }

// AuthError is returned by login when the authentication endpoint rejects the
// credentials or cannot be reached.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(err error, fallback string) *AuthError {
	return &AuthError{Message: Message(err, fallback), Err: err}
}

// Message renders err as the text shown to the user: the backend detail when
// there is one, otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var be *BackendError
	if errors.As(err, &be) {
		if be.Detail != "" {
			return be.Detail
		}
		return fallback
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return fmt.Sprintf("%s: please log in again", fallback)
	}
	return fallback
}
