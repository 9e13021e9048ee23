// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, not_found) mirror common HTTP status
//     semantics to aid interoperability.
//   - Domain-specific codes distinguish conditions that share a status but need
//     different client handling: `rate_limited` (daily quota, retry after reset)
//     vs `payment_required` (upstream billing exhausted, do not retry), and
//     `config_error` vs `upstream_error` on the 5xx side.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "payment_required",
//	  "message": "voice output is unavailable: provider quota exhausted"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeConfig          = "config_error"
	ErrCodeUpstream        = "upstream_error"
	ErrCodePaymentRequired = "payment_required"
	ErrCodeListFailed      = "list_failed"
)
