package util

import (
	"errors"
	"strings"
	"testing"
)

func TestUnreachableError(t *testing.T) {
	err := &UnreachableError{Source: "s1", Destination: "s4", Subnet: "10.0.4.0/24"}

	if !errors.Is(err, ErrUnreachable) {
		t.Error("UnreachableError should unwrap to ErrUnreachable")
	}
	if !strings.Contains(err.Error(), "s1") || !strings.Contains(err.Error(), "s4") {
		t.Errorf("error message missing endpoints: %v", err)
	}
	if !strings.Contains(err.Error(), "10.0.4.0/24") {
		t.Errorf("error message missing subnet: %v", err)
	}
}

func TestInvariantError(t *testing.T) {
	err := &InvariantError{
		Switch:    "s2",
		Invariant: "port claimed by two ECMP groups",
		Details:   "port 3: group 1 and group 2",
	}

	if !errors.Is(err, ErrInvariantViolation) {
		t.Error("InvariantError should unwrap to ErrInvariantViolation")
	}
	if !strings.Contains(err.Error(), "port 3") {
		t.Errorf("error message missing details: %v", err)
	}
}

func TestValidationBuilder(t *testing.T) {
	var v ValidationBuilder

	if v.HasErrors() {
		t.Error("new builder should have no errors")
	}
	if v.Build() != nil {
		t.Error("empty builder should build nil")
	}

	v.Add(true, "should not appear")
	v.Add(false, "cost must be positive")
	v.AddErrorf("switch %s: duplicate local port %d", "s1", 2)

	if !v.HasErrors() {
		t.Error("builder should have errors")
	}

	err := v.Build()
	if err == nil {
		t.Fatal("Build() = nil, want error")
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("built error should unwrap to ErrValidationFailed")
	}
	msg := err.Error()
	if strings.Contains(msg, "should not appear") {
		t.Error("condition-true message leaked into error")
	}
	if !strings.Contains(msg, "cost must be positive") || !strings.Contains(msg, "duplicate local port 2") {
		t.Errorf("missing messages: %s", msg)
	}
}

func TestValidationErrorSingleMessage(t *testing.T) {
	err := NewValidationError("graph has a self-loop at s3")
	if strings.Contains(err.Error(), "\n") {
		t.Errorf("single-message error should be one line: %q", err.Error())
	}
}
