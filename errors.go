package geodna

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is returned by strict encoding for out of range input.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidPrecision is returned when the requested code length is below 1.
	ErrInvalidPrecision = errors.New("invalid precision")
	// ErrMalformedCode is wrapped by every CodeError.
	ErrMalformedCode = errors.New("malformed code")
)

// CodeError describes why a code could not be decoded.
type CodeError struct {
	Code   string
	Reason string
	Pos    int
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s %q at position %d: %s", ErrMalformedCode, e.Code, e.Pos, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformedCode) hold.
func (e *CodeError) Unwrap() error { return ErrMalformedCode }
