package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and repositories. Controllers map them
// to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Specific errors; each wraps one of the sentinels above.
var (
	ErrInvalidFilter     = fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this conference", ErrConflict)
	ErrNoSeatsAvailable  = fmt.Errorf("%w: no seats available", ErrConflict)
	ErrNotInWishlist     = fmt.Errorf("%w: session is not in the wishlist", ErrNotFound)
)
