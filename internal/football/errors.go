package football

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrIllegalState    = errors.New("illegal state")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateMember = errors.New("duplicate member")
)

// ValidationError reports a malformed or out-of-range field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IllegalStateError reports an operation attempted from the wrong match status.
type IllegalStateError struct {
	Op     string
	Status MatchStatus
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cannot %s match in status %s", e.Op, e.Status)
}

func (e *IllegalStateError) Unwrap() error { return ErrIllegalState }

type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type DuplicateMemberError struct {
	TeamID   uuid.UUID
	PlayerID uuid.UUID
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("player %s is already in team %s", e.PlayerID, e.TeamID)
}

func (e *DuplicateMemberError) Unwrap() error { return ErrDuplicateMember }
