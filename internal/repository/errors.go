// Package repository defines error types reused across repositories.
// Sentinel values let handlers distinguish failure scenarios: ErrForbidden
// maps to 403, ErrConflict and ErrInvalidTransition to 409, ErrPeriodClosed
// to 422.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as awarding an application twice.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned when a status change is requested from
// a state that does not allow it (e.g. rejecting a GRANTED application).
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPeriodClosed is returned when a submission arrives outside any open
// application period.
var ErrPeriodClosed = errors.New("no open application period")

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
