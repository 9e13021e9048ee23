// Package provider contains the adapters that call external model services.
//
// Each adapter is a thin, synchronous wrapper around one vendor SDK: it takes
// the already-built system instruction and user content (or text and voice),
// performs a single call with the caller's context, and maps the outcome into
// the package's error taxonomy (see errors.go). Adapters never retry; a
// single upstream failure is a single returned error. Prompt construction,
// quota enforcement, and HTTP concerns all live above this package.
//
// Consumers declare their own small interfaces over these adapters; see the
// services package.
package provider

// Operation labels used in errors and metrics.
const (
	opChat   = "chat"
	opSpeech = "speech"
)

// Audio is a rendered speech payload.
type Audio struct {
	// Bytes is the raw encoded audio.
	Bytes []byte
	// ContentType is the MIME type of Bytes, e.g. "audio/mpeg".
	ContentType string
}
