// Package domainerrors provides coded errors for business rule violations.
// Stores return infrastructure sentinels (pkg/platform/sentinel); services
// translate them into coded errors here so transports can map codes onto
// status lines without inspecting error text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers. Codes are part of the API surface:
// clients branch on them, so renames are breaking changes.
type Code string

const (
	// Generic codes.
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
	CodeUnavailable  Code = "unavailable"

	// Evaluation lifecycle codes.
	CodeSelfRequestNotAllowed Code = "self_request_not_allowed"
	CodeDuplicateActive       Code = "duplicate_active_request"
	CodeCooldownActive        Code = "cooldown_active"
	CodeNotOwnedByCaller      Code = "not_owned_by_caller"
	CodeAlreadyResolved       Code = "already_resolved"
	CodeInvalidSchedule       Code = "invalid_schedule_payload"

	// Verification codes.
	CodeGuideAccessRequired Code = "guide_access_required"
	CodeInvalidCode         Code = "invalid_code"
	CodeDateMismatch        Code = "date_mismatch"
)

// Error carries a code, a human-readable message, optional structured details
// for the caller (e.g. a cooldown expiry), and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As for logging; callers see only the code.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetail adds a structured detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transports never leak raw failure detail.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// Detail returns a structured detail from err, or "" when absent.
func Detail(err error, key string) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Details[key]
	}
	return ""
}

// ToHTTPStatus maps a code onto an HTTP status for JSON error envelopes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeSelfRequestNotAllowed, CodeNotOwnedByCaller, CodeGuideAccessRequired:
		return http.StatusForbidden
	case CodeNotFound, CodeInvalidCode:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateActive, CodeAlreadyResolved:
		return http.StatusConflict
	case CodeCooldownActive:
		return http.StatusTooManyRequests
	case CodeInvalidSchedule, CodeDateMismatch:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
