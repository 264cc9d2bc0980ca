package report

import (
	"errors"
	"strings"
)

var (
	ErrMissingInput  = errors.New("please fill all fields")
	ErrInvalidFormat = errors.New("invalid input format")
)

// MissingInputError lists the locator fields that were left blank.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrMissingInput.Error()
	}
	return ErrMissingInput.Error() + " (missing: " + strings.Join(e.Fields, ", ") + ")"
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// FormatError carries the parse failure for a locator field.
type FormatError struct {
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrInvalidFormat, e.Err}
}
