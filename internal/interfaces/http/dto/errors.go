package dto

import (
	"errors"
	"net/http"

	"github.com/posledger/backend/internal/domain/shared"
)

// Error kinds as they appear on the wire. The four domain kinds come from
// shared.ErrorKind; the rest are raised by the HTTP layer itself.
const (
	KindValidation   = string(shared.KindValidation)
	KindConflict     = string(shared.KindConflict)
	KindNotFound     = string(shared.KindNotFound)
	KindInternal     = string(shared.KindInternal)
	KindUnauthorized = "UNAUTHORIZED"
	KindRateLimited  = "RATE_LIMITED"
)

// Error codes raised outside the domain layer
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTenantRequired  = "TENANT_REQUIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
)

// internalMessage replaces the text of internal errors on the wire
const internalMessage = "An unexpected error occurred"

// KindHTTPStatus maps error kinds to HTTP status codes
var KindHTTPStatus = map[string]int{
	KindValidation:   http.StatusBadRequest,
	KindConflict:     http.StatusConflict,
	KindNotFound:     http.StatusNotFound,
	KindInternal:     http.StatusInternalServerError,
	KindUnauthorized: http.StatusUnauthorized,
	KindRateLimited:  http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status for an error kind.
// Unknown kinds map to 500.
func GetHTTPStatus(kind string) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorInfoFrom converts err into wire error details and the HTTP status to
// send. Errors that are not domain errors, and internal domain errors, are
// reported without their message.
func ErrorInfoFrom(err error) (int, *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) || de.Kind == shared.KindInternal {
		return http.StatusInternalServerError, &ErrorInfo{
			Kind:    KindInternal,
			Code:    ErrCodeInternal,
			Message: internalMessage,
		}
	}
	kind := string(de.Kind)
	return GetHTTPStatus(kind), &ErrorInfo{
		Kind:    kind,
		Code:    de.Code,
		Message: de.Message,
	}
}
