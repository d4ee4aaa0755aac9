package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("identity not found")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrInvalidCredential = errors.New("invalid passcode")
	ErrMissingField      = errors.New("missing field")
	ErrTokenIssuer       = errors.New("token issuer unavailable")
	ErrMediaUnavailable  = errors.New("media storage not configured")
	ErrNotConfigured     = errors.New("service not configured")
)

// ValidationError describe un campo de entrada invalido.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missingField(field string) error {
	return &ValidationError{Field: field, Reason: "is required", Err: ErrMissingField}
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
