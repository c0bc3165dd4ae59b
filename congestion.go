package tlrouter

import (
	"context"
	"errors"
)

// ErrorClass is a coarse, caller-facing classification of a routing failure.
type ErrorClass string

const (
	ClassNone        ErrorClass = ""
	ClassNoKey       ErrorClass = "no_key"
	ClassInvalidKey  ErrorClass = "invalid_key"
	ClassCongested   ErrorClass = "congested"
	ClassTimeout     ErrorClass = "timeout"
	ClassAborted     ErrorClass = "aborted"
	ClassInvalid     ErrorClass = "invalid_request"
	ClassVendorError ErrorClass = "vendor_error"
)

// IsCongestion reports whether err is a ProviderError in the congestion class.
// Only congestion errors are recovered by falling back to the next plan step.
func IsCongestion(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.IsCongestion()
	}
	return false
}

// IsAuth reports whether err is a ProviderError for a rejected API key.
func IsAuth(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.IsAuth()
	}
	return false
}

// IsAborted reports whether err is the result of a caller cancellation.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// IsTimeout reports whether err is a per-call timeout.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// Describe classifies err so that callers can tell "no key configured",
// "invalid key", "all providers congested" and "unexpected vendor error" apart.
func Describe(err error) ErrorClass {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ClassNone
	case IsAborted(err), errors.Is(err, context.Canceled):
		return ClassAborted
	case errors.Is(err, ErrNoUsableConfig):
		return ClassNoKey
	case IsAuth(err):
		return ClassInvalidKey
	case IsCongestion(err):
		return ClassCongested
	case IsTimeout(err):
		return ClassTimeout
	case errors.As(err, &validationErr):
		return ClassInvalid
	default:
		return ClassVendorError
	}
}
