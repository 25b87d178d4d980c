package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors. StatusCode doubles as the
// HTTP status the boundary responds with.
type DomainError struct {
	StatusCode int
	Message    string
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
func NewDomainError(status int, message string) *DomainError {
	return &DomainError{StatusCode: status, Message: message}
}

// NewValidationError reports missing or malformed input fields.
func NewValidationError(message string) error {
	return NewDomainError(http.StatusBadRequest, message)
}

// NewInvalidCredentials reports a password mismatch. Same status as
// validation failures but kept distinct for call-site clarity.
func NewInvalidCredentials(message string) error {
	return NewDomainError(http.StatusBadRequest, message)
}

// NewNotFound reports a missing record.
func NewNotFound(message string) error {
	return NewDomainError(http.StatusNotFound, message)
}

// NewUnauthorized reports an entirely absent credential.
func NewUnauthorized(message string) error {
	return NewDomainError(http.StatusUnauthorized, message)
}

// NewForbidden reports a credential that is present but invalid,
// mismatched, or superseded.
func NewForbidden(message string) error {
	return NewDomainError(http.StatusForbidden, message)
}

// NewInternalError wraps an unexpected failure without leaking its detail.
func NewInternalError(err error) error {
	return &DomainError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal Server Error",
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
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDomainError(http.StatusNotFound, "Resource not found")
	}
	return &DomainError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal Server Error",
		Err:        err,
	}
}

// MapError converts generic errors to the error interface form of DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
