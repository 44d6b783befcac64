package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes for calls against the task API
var (
	// Transport
	ErrNetworkFailure = errors.New("network failure")

	// Authorization
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrSessionExpired       = errors.New("session expired")

	// Responses
	ErrValidationFailure = errors.New("validation failure")
	ErrServerFailure     = errors.New("server failure")

	// Local
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// StatusError is a non-2xx response from the API. It unwraps to the failure
// class it belongs to, so callers can test it with Is.
type StatusError struct {
	StatusCode int
	Message    string // Extracted from the error payload, or the status text
	Body       []byte
	class      error
}

func NewStatusError(statusCode int, message string, body []byte, class error) *StatusError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &StatusError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
		class:      class,
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.class
}

// Classify maps a non-2xx status onto its failure class. isAuthFailure reports
// the codes the API uses for an invalid or expired access token.
func Classify(statusCode int, isAuthFailure func(int) bool) error {
	switch {
	case isAuthFailure != nil && isAuthFailure(statusCode):
		return ErrAuthorizationExpired
	case statusCode >= 500:
		return ErrServerFailure
	case statusCode >= 400:
		return ErrValidationFailure
	}
	return nil
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join is errors.Join
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// New is errors.New
func New(text string) error {
	return errors.New(text)
}
