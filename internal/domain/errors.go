package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidState      = errors.New("invalid state")
	ErrExpired           = errors.New("expired")
	ErrGone              = errors.New("gone")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// ConflictError represents a name collision with details about the existing item.
// Callers use ResourceID to offer rename-or-replace.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder or file
	ResourceID   string // ID of the existing item
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewNameConflict reports a live sibling of the same kind and name.
// existingID may be empty when the store cannot tell which row collided.
func NewNameConflict(kind, name, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a %s named '%s' already exists in this location", kind, name),
		ResourceType: kind,
		ResourceID:   existingID,
	}
}

// StateError reports an operation that violates a lifecycle guard
// (star while trashed, trash while starred, delete while not trashed,
// moving an item into itself). Message is safe to show to the user.
type StateError struct {
	Message string
	ItemID  string
}

func (e *StateError) Error() string { return e.Message }

func (e *StateError) StatusCode() int { return http.StatusConflict }

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NewStateError builds a StateError for the given item
func NewStateError(itemID, message string) *StateError {
	return &StateError{Message: message, ItemID: itemID}
}
