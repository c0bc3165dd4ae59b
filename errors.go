package tlrouter

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNoUsableConfig is returned when no step of a plan has an API key configured.
var ErrNoUsableConfig = errors.New("no usable provider configuration: no API key is set for any provider in the routing plan")

// ErrAborted is returned when the caller cancels an operation. It is not a
// failure and callers normally suppress it.
var ErrAborted = errors.New("request aborted")

// ProviderError indicates a vendor failure, tagged with the HTTP status code
// when one was received.
type ProviderError struct {
	Provider   ProviderID
	StatusCode int    // 0 if no HTTP response was received
	Message    string // Vendor message, verbatim when available
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s error (status %d): %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("provider %s error: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsAuth reports an authentication failure (HTTP 401).
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsCongestion reports a rate limit or transient unavailability (HTTP 429 or 503).
func (e *ProviderError) IsCongestion() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// TimeoutError indicates that a single vendor call exceeded its per-call timeout.
type TimeoutError struct {
	Provider ProviderID
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %s: request timed out after %s", e.Provider, e.Timeout)
}

// ValidationError indicates an invalid request or configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// KeyStoreError indicates that the key store could not be read.
type KeyStoreError struct {
	Provider ProviderID
	Cause    error
}

func (e *KeyStoreError) Error() string {
	return fmt.Sprintf("key store error for %s: %v", e.Provider, e.Cause)
}

func (e *KeyStoreError) Unwrap() error {
	return e.Cause
}
