package errors

import (
	"errors"
	"testing"
)

var (
	testCode  = MustNewCode("test.code")
	testCode2 = MustNewCode("test.code2")
)

func TestNew(t *testing.T) {
	err := New(CommonInternal, "test error", nil)

	if err.Message != "test error" {
		t.Errorf("expected message 'test error', got %q", err.Message)
	}
	if err.Code.String() != "common.internal" {
		t.Errorf("expected code 'common.internal', got %q", err.Code.String())
	}
	if err.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestNewWithCause(t *testing.T) {
	cause := errors.New("underlying")
	err := New(testCode, "wrapped", cause)

	if err.Unwrap() != cause {
		t.Errorf("expected Unwrap to return cause, got %v", err.Unwrap())
	}
	if got := err.Error(); got != "wrapped: underlying" {
		t.Errorf("unexpected Error() string: %q", got)
	}
}

func TestAddContext(t *testing.T) {
	err := New(testCode, "failed", nil).
		AddContext("table", "orders").
		AddContext("database", "main")

	if !err.HasContext("table") {
		t.Error("expected context key 'table' to be present")
	}
	if err.GetContext("table") != "orders" {
		t.Errorf("expected context value 'orders', got %v", err.GetContext("table"))
	}
	if len(err.GetContextKeys()) != 2 {
		t.Errorf("expected 2 context keys, got %d", len(err.GetContextKeys()))
	}
}

func TestErrorsAsInterop(t *testing.T) {
	cause := errors.New("root cause")
	err := New(testCode, "mid-level failure", cause)

	var target error = err
	if !errors.Is(target, cause) {
		t.Error("expected errors.Is to unwrap to the root cause")
	}
}

func TestRecoveryActions(t *testing.T) {
	err := New(testCode, "failed", nil).
		AddRecoveryAction(RecoveryAction{Type: "retry", Automatic: true}).
		AddRecoveryAction(RecoveryAction{Type: "manual", Automatic: false})

	if !err.IsRecoverable() {
		t.Error("expected IsRecoverable to be true")
	}
	if len(err.GetAutomaticRecoveryActions()) != 1 {
		t.Errorf("expected 1 automatic recovery action, got %d", len(err.GetAutomaticRecoveryActions()))
	}
}

func TestCodeEquality(t *testing.T) {
	if !testCode.Equals(MustNewCode("test.code")) {
		t.Error("expected equal codes to compare equal")
	}
	if testCode.Equals(testCode2) {
		t.Error("expected distinct codes to compare unequal")
	}
}
