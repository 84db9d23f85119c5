package gateway

import (
	"errors"
	"fmt"
)

var ErrMissingParameters = errors.New("tenant, user, purpose and text are required")

// ConsentError marks a call blocked by the consent gate before any provider
// dispatch. The gateway never retries it; retry policy belongs to the caller.
type ConsentError struct {
	Err error
}

func (e *ConsentError) Error() string {
	return fmt.Sprintf("consent check failed: %v", e.Err)
}

func (e *ConsentError) Unwrap() error {
	return e.Err
}

// ProviderError marks a failure in the provider adapter after consent and
// redaction succeeded.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
