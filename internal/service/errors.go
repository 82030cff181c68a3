package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrNotFound is for administrative lookups only. Authentication paths
	// never return it; they collapse every failure into ErrInvalidCredentials
	// or ErrInvalidToken.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrConflict = errors.New("already exists")

	ErrStorage = errors.New("storage failure")

	// ErrDeliveryFailed means no notification channel accepted a reset link.
	ErrDeliveryFailed = errors.New("could not deliver reset link")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
