package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrBackendUnavailable is returned when the completion backend cannot
	// be reached at the transport level.
	ErrBackendUnavailable = errors.New("completion backend unavailable")

	// ErrEmptyResponse is returned when a completion turn produced no usable text
	ErrEmptyResponse = errors.New("completion backend returned no text")

	// ErrInvalidConfig is returned when a backend client configuration is invalid
	ErrInvalidConfig = errors.New("invalid backend configuration")
)

// BackendError reports a non-2xx response from the completion backend. Body
// carries the backend's own error text, possibly enriched with a hint about
// locally available models.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("completion backend returned status %d: %s", e.Status, e.Body)
}
