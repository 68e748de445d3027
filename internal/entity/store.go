package entity

import (
	"errors"
	"fmt"
)

// ErrDuplicateEntity is returned by [Repository.Add] when the ID, or the
// name in a repository with unique names, is already taken.
var ErrDuplicateEntity = errors.New("entity: duplicate entity")

// ErrMissingID is returned by [Repository.Add] for an entity with an empty ID.
// Parsers always assign one, so this only fires on hand-built entities.
var ErrMissingID = errors.New("entity: missing id")

// DuplicateEntityError describes which entity collided and on what.
type DuplicateEntityError struct {
	Kind Kind

	// Field is "id" or "name".
	Field string
	Value string

	// ExistingID is the ID of the entity already holding Value.
	ExistingID string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity: duplicate %s %s %q (held by %q)", e.Kind, e.Field, e.Value, e.ExistingID)
}

func (e *DuplicateEntityError) Unwrap() error { return ErrDuplicateEntity }

// Outcome classifies a [Repository.Lookup].
type Outcome int

const (
	// NotFound means the ID is unknown and the repository has no
	// placeholder factory.
	NotFound Outcome = iota

	// Found means the ID resolved to a stored entity.
	Found

	// DefaultedWithWarning means the ID is unknown and a placeholder was
	// built instead. The placeholder is not stored.
	DefaultedWithWarning
)

// String implements [fmt.Stringer].
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case DefaultedWithWarning:
		return "defaulted"
	default:
		return "not_found"
	}
}

// LookupResult is returned by [Repository.Lookup].
type LookupResult[T Entity] struct {
	Entity  T
	Outcome Outcome
}

// OK reports whether Entity is usable, i.e. the lookup did not come back
// [NotFound].
func (r LookupResult[T]) OK() bool { return r.Outcome != NotFound }

// RepositoryOptions configure [NewRepository].
type RepositoryOptions[T Entity] struct {
	// UniqueNames rejects a second entity whose name matches an existing one
	// case-insensitively. Empty names are never compared.
	UniqueNames bool

	// Placeholder builds a stand-in for an unknown ID in [Repository.Lookup].
	// Nil makes Lookup return [NotFound] instead.
	Placeholder func(id string) T
}
