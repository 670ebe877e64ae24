package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewNotFound reports an unknown ticket id.
func NewNotFound(resource, id string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s %q not found", resource, id),
		http.StatusNotFound, map[string]any{"id": id})
}

// NewInvalidTransition rejects a state value outside the enumeration.
func NewInvalidTransition(id string, state string) error {
	return NewDomainError("INVALID_TRANSITION", fmt.Sprintf("ticket %q cannot move to state %q", id, state),
		http.StatusUnprocessableEntity, map[string]any{"id": id, "state": state})
}

// NewEmptyComment rejects blank comment text before any mutation.
func NewEmptyComment(id string) error {
	return NewDomainError("EMPTY_COMMENT", fmt.Sprintf("comment text for ticket %q is empty", id),
		http.StatusBadRequest, map[string]any{"id": id})
}

// NewSchemaMismatch names every required column missing from an uploaded file.
func NewSchemaMismatch(missing []string) error {
	return NewDomainError("SCHEMA_MISMATCH",
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		http.StatusBadRequest, map[string]any{"missing_columns": missing})
}

// NewUnreadableFile reports a payload the tabular parser could not decode.
func NewUnreadableFile(err error) error {
	return &DomainError{
		Code:       "UNREADABLE_FILE",
		Message:    "uploaded file could not be parsed",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewStorageFailure wraps persistence-medium failures (unavailable, timeout, write error).
func NewStorageFailure(op string, err error) error {
	return &DomainError{
		Code:       "STORAGE_FAILURE",
		Message:    fmt.Sprintf("storage operation %s failed", op),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
