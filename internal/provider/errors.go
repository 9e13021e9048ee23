// Package provider – error taxonomy
//
// This file defines the error vocabulary of the provider boundary. Adapters
// translate every SDK- or transport-specific failure into these values before
// returning, so no provider SDK type ever crosses into the service or handler
// layers. Callers branch with errors.Is/errors.As only.
package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when required credentials or a model
	// identifier are absent at call time. It maps to a server-configuration
	// error at the HTTP boundary and is never retried.
	ErrNotConfigured = errors.New("provider configuration missing")

	// ErrQuotaExhausted marks an upstream billing or quota rejection, as
	// opposed to a transient upstream failure. The speech path surfaces it
	// as a distinct payment-required condition so callers learn that voice
	// output is unavailable while text chat still works.
	ErrQuotaExhausted = errors.New("provider quota exhausted")
)

// CallError wraps a failed upstream call with the provider and operation that
// produced it. The wrapped error is either a sanitized upstream message or
// one of the sentinel values above, so errors.Is(err, ErrQuotaExhausted)
// still matches through it.
type CallError struct {
	Provider string
	Op       string
	Err      error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *CallError) Unwrap() error { return e.Err }

// callErr builds a CallError around an already-classified cause.
func callErr(providerName, op string, cause error) error {
	return &CallError{Provider: providerName, Op: op, Err: cause}
}
