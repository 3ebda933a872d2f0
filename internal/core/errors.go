package core

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// DuplicateError reports a category label that is already present.
type DuplicateError struct {
	Label string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Label)
}

// NotFoundError reports a transaction or category that does not exist.
type NotFoundError struct {
	Kind string // "transaction" or "category"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

var (
	ErrEmptyDescription = &ValidationError{Field: "description", Reason: "empty description"}
	ErrLongDescription  = &ValidationError{Field: "description", Reason: "description too long (max 200 characters)"}
	ErrInvalidAmount    = &ValidationError{Field: "amount", Reason: "invalid amount"}
	ErrEmptyCategory    = &ValidationError{Field: "category", Reason: "empty category"}
	ErrEmptyLabel       = &ValidationError{Field: "label", Reason: "empty category label"}
	ErrInvalidTheme     = &ValidationError{Field: "theme", Reason: "theme must be light or dark"}
)

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicate reports whether err is, or wraps, a *DuplicateError.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
