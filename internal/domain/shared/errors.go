package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so callers can react without
// inspecting individual codes.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindConflict   ErrorKind = "CONFLICT"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindInternal   ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError of the same kind. A sentinel
// carrying a code (other than the kind name) must match the code as well.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Code == "" || t.Code == string(t.Kind) {
		return true
	}
	return t.Code == e.Code
}

// NewDomainError creates a validation-kind domain error. Most codes raised by
// aggregates are input problems; use the kind-specific helpers otherwise.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewKindError creates a domain error of an explicit kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError creates a CONFLICT error
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// WrapInternal wraps a storage or infrastructure failure. Domain errors pass
// through unchanged so their kind survives the transaction boundary.
func WrapInternal(err error, message string) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: fmt.Sprintf("%s: %v", message, err),
		cause:   err,
	}
}

// KindOf returns the kind of err, defaulting to KindInternal for errors that
// are not domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "VALIDATION", Message: "Invalid input provided"}
	ErrAlreadyExists       = &DomainError{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrInvalidState        = &DomainError{Kind: KindConflict, Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
	ErrInternal            = &DomainError{Kind: KindInternal, Code: "INTERNAL", Message: "Internal error"}
)
