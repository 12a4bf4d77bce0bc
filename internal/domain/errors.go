package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these to HTTP statuses; everything else surfaces as a 500.
var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrDuplicateRegistration = errors.New("already registered for this event")
)
