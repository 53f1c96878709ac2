// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for control-plane failures
var (
	ErrNotConnected       = errors.New("switch not connected")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidTopology    = errors.New("invalid topology")
	ErrUnreachable        = errors.New("destination unreachable")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStaleReading       = errors.New("stale counter reading")
	ErrValidationFailed   = errors.New("validation failed")
)

// UnreachableError reports a destination switch with no path from a source.
// Non-fatal: the subnet is left unprogrammed on that source.
type UnreachableError struct {
	Source      string
	Destination string
	Subnet      string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("no path from %s to %s (subnet %s left unprogrammed)",
		e.Source, e.Destination, e.Subnet)
}

func (e *UnreachableError) Unwrap() error {
	return ErrUnreachable
}

// InvariantError reports a build-time invariant violation, like a port
// claimed as a member of two ECMP groups.
type InvariantError struct {
	Switch    string
	Invariant string
	Details   string
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("invariant violated on %s: %s", e.Switch, e.Invariant)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
