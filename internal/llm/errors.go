package llm

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("api key not configured")
	ErrEmptyResult   = errors.New("empty result")
)

// TransportError means the remote service could not be reached.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is a non-success response from the remote service.
type ServiceError struct {
	Service string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
}

// IsFatal reports whether err should abort the current unit of work.
// ErrEmptyResult is the only non-fatal outcome.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrEmptyResult)
}
