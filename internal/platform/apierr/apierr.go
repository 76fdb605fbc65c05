package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "not_found"
	CodeValidation        = "validation_error"
	CodeDependencyFailure = "dependency_failure"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound marks a missing entity reference. Never retried.
func NotFound(entity string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", entity))
}

// Validation marks caller-supplied values that violate field constraints.
// Surfaced before any mutation happens.
func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

// Dependency marks an external collaborator failure (the recognizer call).
func Dependency(err error) *Error {
	return New(http.StatusBadGateway, CodeDependencyFailure, err)
}

// From extracts the *Error from an error chain, defaulting to a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == CodeNotFound
}

func IsValidation(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == CodeValidation
}
