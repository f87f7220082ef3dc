package workspace

import (
	"errors"
	"fmt"
)

// Lookup failures. Callers match these with errors.Is.
var (
	ErrTargetNotFound = errors.New("target not found")
	ErrJobNotFound    = errors.New("job not found")
)

// APIError is a non-2xx response from the service. Transport and auth
// failures are passed through as-is; this type only wraps responses the
// service itself produced.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

// CredentialUnavailableError indicates a credential could not produce a
// token. The reason is included verbatim in the message.
type CredentialUnavailableError struct {
	Reason string
}

func (e *CredentialUnavailableError) Error() string {
	return "credential unavailable: " + e.Reason
}
