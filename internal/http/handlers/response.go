// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response conventions shared by every endpoint: a
// stable error envelope, centralized 5xx logging, and a small success helper.
// Error codes are machine-readable constants (see errors.go); messages are
// safe to display to end users, including the localized quota notices.
//
// Example error response:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "rate_limited",
//	  "message": "今日的免费对话次数已用完…"
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "reply": "「袋はいりません」と言えば大丈夫です。" }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dramalab/go-drama-agent/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. RequestID
// echoes the X-Request-ID header so client reports can be correlated with
// server logs; Code is stable and machine-readable; Message is readable prose
// safe to surface in a UI. Swagger annotations reference this struct.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"rate_limited"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"daily quota exhausted"`
}

// requestID returns the correlation ID stamped on the response by the
// RequestID middleware, or "" when the middleware is absent.
func requestID(c *gin.Context) string {
	return c.Writer.Header().Get("X-Request-ID")
}

// fail aborts the request with the standard error envelope.
//
// Server-side failures (status >= 500) are additionally logged through the
// request-scoped logger, so every 5xx has a correlated log line.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: requestID(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail() to the router for NoRoute/NoMethod handlers, keeping
// every error body in the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
