// Package errs holds the error kinds shared by the domain, the API client and the CLI.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrNetwork covers transport failures, timeouts and an open circuit.
	ErrNetwork = errors.New("network error")

	// ErrAuth means the credentials or session token were rejected.
	ErrAuth = errors.New("not authorized")

	// ErrValidation means a payload was rejected, locally or by the API.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedURL means a story url could not be parsed as an absolute URI.
	ErrMalformedURL = errors.New("malformed url")

	// ErrNotFound means the API has no such user or story.
	ErrNotFound = errors.New("not found")

	// ErrAPI is any other non-2xx answer from the API.
	ErrAPI = errors.New("api error")
)

// APIError is a failed call to the remote API.
type APIError struct {
	Op      string
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// FieldError reports a single missing or invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// KindOf returns the sentinel err belongs to, or nil when it matches none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNetwork, ErrAuth, ErrValidation, ErrMalformedURL, ErrNotFound, ErrAPI} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
