package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies an expected store failure. Callers map kinds to
// user-visible outcomes (HTTP status, form error); the store only classifies.
type Kind string

const (
	KindNotFound Kind = "not_found"
	KindExists   Kind = "already_exists"
	KindInvalid  Kind = "invalid"
)

// Error is a typed store failure carrying the entity and identifier it
// concerns. New entities extend the taxonomy via the Entity tag, not via new
// error types.
type Error struct {
	Kind   Kind
	Entity string
	ID     uuid.UUID
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Detail)
	}
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s %s: not found", e.Entity, e.ID)
	case KindExists:
		return fmt.Sprintf("%s %s: already exists", e.Entity, e.ID)
	default:
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Kind)
	}
}

// NotFound reports that no such record exists for the caller. Records owned
// by someone else produce the same error as records that never existed.
func NotFound(entity string, id uuid.UUID) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// Exists reports a uniqueness conflict.
func Exists(entity string, id uuid.UUID) *Error {
	return &Error{Kind: KindExists, Entity: entity, ID: id}
}

// Invalid reports a constraint violation on the record's fields.
func Invalid(entity, detail string) *Error {
	return &Error{Kind: KindInvalid, Entity: entity, Detail: detail}
}

// IsNotFound reports whether err is a store NotFound error.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsExists reports whether err is a store uniqueness-conflict error.
func IsExists(err error) bool { return hasKind(err, KindExists) }

// IsInvalid reports whether err is a store validation error.
func IsInvalid(err error) bool { return hasKind(err, KindInvalid) }

func hasKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
