package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"source unavailable", ErrSourceUnavailable, true},
		{"fetch timeout", ErrFetchTimeout, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"invalid payload", ErrInvalidPayload, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"network error", fmt.Errorf("network connection failed"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"fetch timeout", ErrFetchTimeout, false},
		{"invalid payload", ErrInvalidPayload, false},
		{"fatal in message", fmt.Errorf("fatal system error occurred"), true},
		{"panic in message", fmt.Errorf("recovered from panic in worker"), true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid payload", ErrInvalidPayload, true},
		{"parsing failed", ErrParsingFailed, true},
		{"invalid mapping", ErrInvalidMapping, true},
		{"validation failed", ErrValidationFailed, true},
		{"invalid path", ErrInvalidPath, true},
		{"invalid template", ErrInvalidTemplate, true},
		{"source unavailable", ErrSourceUnavailable, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil error", nil, ErrorTransient},
		{"transient error", ErrSourceUnavailable, ErrorTransient},
		{"fatal error", ErrInvalidConfig, ErrorFatal},
		{"invalid error", ErrValidationFailed, ErrorInvalid},
		{"unknown error defaults to transient", fmt.Errorf("mystery failure"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("underlying failure")

	wrapped := Wrap(base, "mapping", "Parse", "document decode")
	if wrapped == nil {
		t.Fatal("expected non-nil wrapped error")
	}
	expected := "mapping.Parse: document decode failed: underlying failure"
	if wrapped.Error() != expected {
		t.Errorf("expected %q, got %q", expected, wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}

	if Wrap(nil, "mapping", "Parse", "noop") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestClassifiedWrappers(t *testing.T) {
	base := fmt.Errorf("underlying failure")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"WrapTransient", WrapTransient, ErrorTransient},
		{"WrapInvalid", WrapInvalid, ErrorInvalid},
		{"WrapFatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wrapped := test.wrap(base, "reload", "poll", "fetch")

			var ce *ClassifiedError
			if !errors.As(wrapped, &ce) {
				t.Fatal("expected a ClassifiedError")
			}
			if ce.Class != test.class {
				t.Errorf("expected class %v, got %v", test.class, ce.Class)
			}
			if ce.Component != "reload" || ce.Operation != "poll" {
				t.Errorf("expected component/operation context, got %q/%q", ce.Component, ce.Operation)
			}
			if !errors.Is(wrapped, base) {
				t.Error("classified error should unwrap to base")
			}
			if !strings.Contains(wrapped.Error(), "reload.poll") {
				t.Errorf("expected context in message, got %q", wrapped.Error())
			}

			if test.wrap(nil, "reload", "poll", "noop") != nil {
				t.Error("wrapping nil should return nil")
			}
		})
	}
}

func TestClassifiedError_MessageFallback(t *testing.T) {
	ce := &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("raw")}
	if ce.Error() != "raw" {
		t.Errorf("expected fallback to underlying error text, got %q", ce.Error())
	}

	ce.Message = "friendly"
	if ce.Error() != "friendly" {
		t.Errorf("expected message to win, got %q", ce.Error())
	}
}
