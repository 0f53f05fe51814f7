package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrAddressOutOfRange   = errors.New("address out of range")
	ErrInvalidDateOfBirth  = errors.New("invalid date of birth")
	ErrMissingField        = errors.New("missing required field")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrEmailMismatch       = errors.New("email does not match the signed-in identity")
)

// OutOfRangeError reports how far a rejected address is from the reference point.
type OutOfRangeError struct {
	DistanceKm float64
	MaxKm      float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address is %.1f km away, limit is %.1f km", e.DistanceKm, e.MaxKm)
}

func (e *OutOfRangeError) Unwrap() error { return ErrAddressOutOfRange }

// MissingFieldError lists the required fields that were empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
