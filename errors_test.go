package tlrouter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: ProviderGroq, StatusCode: 429, Message: "Rate limit reached"}

	if err.Error() != "provider groq error (status 429): Rate limit reached" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !err.IsCongestion() {
		t.Error("429 should be congestion")
	}
	if err.IsAuth() {
		t.Error("429 should not be auth")
	}

	// Without status, the cause supplies the message
	cause := errors.New("dial tcp: connection refused")
	err2 := &ProviderError{Provider: ProviderGemini, Cause: cause}
	if err2.Error() != "provider gemini error: dial tcp: connection refused" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
	if err2.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Provider: ProviderOpenAI, Timeout: 60 * time.Second}

	if err.Error() != "provider openai: request timed out after 1m0s" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "temperature", Message: "too high"}

	if err.Error() != "invalid temperature: too high" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestKeyStoreError(t *testing.T) {
	cause := errors.New("redis: connection pool timeout")
	err := &KeyStoreError{Provider: ProviderXAI, Cause: cause}

	if err.Error() != "key store error for xai: redis: connection pool timeout" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("KeyStoreError should wrap its cause")
	}
}

func TestIsCongestion(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"429", &ProviderError{StatusCode: 429}, true},
		{"503", &ProviderError{StatusCode: 503}, true},
		{"502", &ProviderError{StatusCode: 502}, false},
		{"500", &ProviderError{StatusCode: 500}, false},
		{"401", &ProviderError{StatusCode: 401}, false},
		{"wrapped 429", fmt.Errorf("step 0: %w", &ProviderError{StatusCode: 429}), true},
		{"plain error", errors.New("429 in text only"), false},
		{"timeout", &TimeoutError{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCongestion(tt.err); got != tt.expected {
				t.Errorf("IsCongestion(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorClass
	}{
		{nil, ClassNone},
		{ErrNoUsableConfig, ClassNoKey},
		{&ProviderError{StatusCode: 401}, ClassInvalidKey},
		{&ProviderError{StatusCode: 429}, ClassCongested},
		{&ProviderError{StatusCode: 503}, ClassCongested},
		{&ProviderError{StatusCode: 500}, ClassVendorError},
		{&TimeoutError{}, ClassTimeout},
		{fmt.Errorf("%w: %w", ErrAborted, context.Canceled), ClassAborted},
		{context.Canceled, ClassAborted},
		{&ValidationError{Field: "text"}, ClassInvalid},
		{errors.New("boom"), ClassVendorError},
	}

	for _, tt := range tests {
		if got := Describe(tt.err); got != tt.expected {
			t.Errorf("Describe(%v) = %q, want %q", tt.err, got, tt.expected)
		}
	}
}
