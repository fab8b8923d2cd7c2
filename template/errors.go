package template

import "errors"

var (
	// ErrEmpty is returned for a blank template source.
	ErrEmpty = errors.New("template is empty")

	// ErrParse wraps syntax errors.
	ErrParse = errors.New("template parse error")

	// ErrExecute wraps errors raised while rendering.
	ErrExecute = errors.New("template execution error")

	// ErrNotFound is returned when no template is compiled under a name.
	ErrNotFound = errors.New("template not found")
)
