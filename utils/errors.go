package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain error taxonomy. Every synchronous failure of the scheduling core is
// one of these; the HTTP layer maps them to status codes with StatusForError.

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports an overlap or duplicate that left state unchanged.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a disallowed booking status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// InsufficientInventoryError blocks a completion when stock cannot cover the
// configured consumption. No partial deduction happens.
type InsufficientInventoryError struct {
	ItemID string
	Needed int
	OnHand int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for item %s: need %d, have %d", e.ItemID, e.Needed, e.OnHand)
}

// NotFoundError reports an unknown entity reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// StatusForError maps a domain error to an HTTP status code.
func StatusForError(err error) int {
	var (
		ve *ValidationError
		ce *ConflictError
		te *InvalidTransitionError
		ie *InsufficientInventoryError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &te):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ie):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ne):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
