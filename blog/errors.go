package blog

import (
	"errors"
	"strings"
)

// Sentinel errors shared by the domain and its stores.
var (
	// ErrNotFound indicates the requested post or comment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid indicates an input failed validation.
	ErrInvalid = errors.New("invalid input")

	// ErrConflict indicates a uniqueness constraint, such as the slug, was violated.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports which fields of an input were rejected.
type ValidationError struct {
	Fields []string // Offending field names, in declaration order
	Msg    string   // Client-facing message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid " + strings.Join(e.Fields, ", ")
}

// Unwrap returns ErrInvalid so errors.Is(err, ErrInvalid) holds.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
