// Package common defines shared constants and sentinel errors used across
// the store, services and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation error")

	// Plan limits.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// Token lifecycle errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrAlreadyActivated = errors.New("invite already activated")

	// Admission control.
	ErrTooManyRequests = errors.New("too many requests")

	// Store errors.
	ErrCorruptDocument = errors.New("corrupt store document")
)

// QuotaError reports which plan limit was hit. It matches ErrQuotaExceeded
// with errors.Is.
type QuotaError struct {
	Limit   string
	Max     int
	Current int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %s (limit %d, current %d)", e.Limit, e.Max, e.Current)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

// ValidationError describes malformed input rejected before the store is
// touched. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is a shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
