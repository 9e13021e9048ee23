// Package services defines the business logic for chat, speech, and usage
// history. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer. Provider-boundary errors
// (provider.ErrNotConfigured, provider.ErrQuotaExhausted, *provider.CallError)
// pass through this layer unchanged.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Request validation errors.
var (
	// ErrEmptyIdentity is returned when a chat request carries no caller
	// identity. The quota tracker needs one to key its budget.
	ErrEmptyIdentity = errors.New("identity is empty")

	// ErrEmptyMessage is returned when a chat request contains an empty
	// message after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrEmptyText is returned when a speech request contains no text to
	// synthesize.
	ErrEmptyText = errors.New("text is empty")

	// ErrTooLong is returned when a message or text exceeds the configured
	// maximum rune length.
	ErrTooLong = errors.New("input too long")
)

// QuotaExceededError is returned when an identity has exhausted its daily
// budget. It is an expected, user-facing condition, not an internal fault:
// it carries the reset timing the handler needs to build a Retry-After
// header and guidance text. No provider call is made when it is returned.
type QuotaExceededError struct {
	Identity   string
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota of %d exhausted for %q, resets at %s",
		e.Limit, e.Identity, e.ResetAt.UTC().Format(time.RFC3339))
}
