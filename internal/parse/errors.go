package parse

import (
	"errors"
	"fmt"

	"github.com/MrWong99/wayfarer/internal/entity"
)

var (
	// ErrRejected is wrapped by every error that makes a parser discard a
	// record.
	ErrRejected = errors.New("parse: record rejected")

	// ErrMissingRequiredField is wrapped when a record lacks a field it
	// cannot be addressed or placed without.
	ErrMissingRequiredField = errors.New("parse: missing required field")
)

// MissingFieldError names the absent field. It matches both
// [ErrMissingRequiredField] and [ErrRejected].
type MissingFieldError struct {
	Kind     entity.Kind
	EntityID string
	Field    string
}

func (e *MissingFieldError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("parse: %s: missing required field %q", e.Kind, e.Field)
	}
	return fmt.Sprintf("parse: %s %q: missing required field %q", e.Kind, e.EntityID, e.Field)
}

func (e *MissingFieldError) Unwrap() []error {
	return []error{ErrMissingRequiredField, ErrRejected}
}

// RejectedError reports a discriminant value that did not resolve.
type RejectedError struct {
	Kind     entity.Kind
	EntityID string
	Field    string
	Value    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("parse: %s %q: unknown %s %q", e.Kind, e.EntityID, e.Field, e.Value)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }
