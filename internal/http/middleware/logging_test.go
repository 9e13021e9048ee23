package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// withCapturedLogger swaps the global logger for one writing plain JSON lines
// into the returned buffer, restoring the original when the test ends.
func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// ridEngine builds a RequestID-only engine with a probe route that records
// the context value.
func ridEngine(ctxRID *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		*ctxRID = c.GetString(requestIDKey)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var ctxRID string
	r := ridEngine(&ctxRID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))

	rid := w.Header().Get(requestIDHeader)
	if rid == "" {
		t.Fatalf("expected generated %s header", requestIDHeader)
	}
	if ctxRID != rid {
		t.Fatalf("context id %q != header id %q", ctxRID, rid)
	}
}

func TestRequestID_ReusesIncomingID(t *testing.T) {
	var ctxRID string
	r := ridEngine(&ctxRID)

	req := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("response id = %q; want abc-123", got)
	}
	if ctxRID != "abc-123" {
		t.Fatalf("context id = %q; want abc-123", ctxRID)
	}
}

func TestRequestID_BlankAndPaddedHeaders(t *testing.T) {
	var ctxRID string
	r := ridEngine(&ctxRID)

	// Whitespace-only header counts as missing.
	req := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set(requestIDHeader, "   ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if rid := w.Header().Get(requestIDHeader); rid == "" || strings.TrimSpace(rid) != rid {
		t.Fatalf("blank incoming id should yield a fresh one, got %q", rid)
	}

	// Padded IDs are trimmed, not regenerated.
	req = httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set(requestIDHeader, "  keep-me  ")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "keep-me" {
		t.Fatalf("padded id = %q; want keep-me", got)
	}
	if ctxRID != "keep-me" {
		t.Fatalf("context id = %q; want keep-me", ctxRID)
	}
}

// loggedStack wires the production ordering so Recovery sees the
// request-scoped logger.
func loggedStack() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.Use(Recovery())
	return r
}

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	buf := withCapturedLogger(t)

	r := loggedStack()
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("unexpected body: %v", body)
	}
	rid := w.Header().Get(requestIDHeader)
	if rid == "" || body["request_id"] != rid {
		t.Fatalf("request id mismatch: header=%q body=%v", rid, body["request_id"])
	}

	logs := buf.String()
	if !strings.Contains(logs, "panic recovered") || !strings.Contains(logs, "kaboom") {
		t.Fatalf("expected panic log, got:\n%s", logs)
	}
	// The attached request-scoped logger supplies the correlation ID.
	if !strings.Contains(logs, `"request_id":"`+rid+`"`) {
		t.Fatalf("panic log missing request_id %q, got:\n%s", rid, logs)
	}
}

func TestRecovery_PanicAfterWriteSkipsJSONBody(t *testing.T) {
	buf := withCapturedLogger(t)

	r := loggedStack()
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	// The 200 and partial body are already flushed; Recovery must not append
	// a JSON envelope on top of them.
	if got := w.Body.String(); got != "partial-body" {
		t.Fatalf("body = %q; want the partial write only", got)
	}
	if !strings.Contains(buf.String(), "late kaboom") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom_AttachedAndFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// With RedactingLogger installed the handler logs with request fields.
	buf := withCapturedLogger(t)
	r := loggedStack()
	r.GET("/scoped", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scoped entry")
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scoped", nil))

	logs := buf.String()
	if !strings.Contains(logs, `"message":"scoped entry"`) {
		t.Fatalf("scoped entry not logged:\n%s", logs)
	}
	if !strings.Contains(logs, `"path":"/scoped"`) || !strings.Contains(logs, `"request_id"`) {
		t.Fatalf("scoped entry missing request fields:\n%s", logs)
	}

	// Without it LoggerFrom degrades to the global logger.
	buf2 := withCapturedLogger(t)
	bare := gin.New()
	bare.GET("/bare", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("bare entry")
		c.Status(http.StatusOK)
	})
	w2 := httptest.NewRecorder()
	bare.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/bare", nil))

	logs2 := buf2.String()
	if !strings.Contains(logs2, `"message":"bare entry"`) {
		t.Fatalf("fallback entry not logged:\n%s", logs2)
	}
	if strings.Contains(logs2, `"request_id"`) {
		t.Fatalf("fallback logger should not carry request fields:\n%s", logs2)
	}
}

func Test_truncate(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
		{"abc", -1, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tt.s, tt.max, got, tt.want)
		}
	}
}
