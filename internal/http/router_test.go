package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/dramalab/go-drama-agent/docs"
	"github.com/dramalab/go-drama-agent/internal/config"
	"github.com/dramalab/go-drama-agent/internal/domain"
	"github.com/dramalab/go-drama-agent/internal/provider"
	"github.com/dramalab/go-drama-agent/internal/quota"
	"github.com/dramalab/go-drama-agent/internal/repo"
)

// --- tiny fake providers to satisfy the service interfaces ---

type fakeChat struct{}

func (fakeChat) Complete(_ context.Context, _, _ string) (string, error) {
	return "こんにちは！", nil
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(_ context.Context, _, _ string) (provider.Audio, error) {
	return provider.Audio{Bytes: []byte("mp3"), ContentType: "audio/mpeg"}, nil
}

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// schema so the ledger endpoints don't explode
	if err := db.AutoMigrate(&domain.UsageLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseCfg() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		LLM:         config.LLMConfig{Provider: "openai"},
		Speech:      config.SpeechConfig{Provider: "openai", Voice: "alloy"},
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseCfg()
	db := newTestDB(t)

	RegisterRoutes(r, db, fakeChat{}, fakeSpeech{}, quota.NewTracker(5), cfg)

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// root status message is mounted
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("JP Drama Agent API is running.")) {
		t.Fatalf("GET / bad: code=%d body=%s", w.Code, w.Body.String())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseCfg()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	db := newTestDB(t)

	RegisterRoutes(r, db, fakeChat{}, fakeSpeech{}, quota.NewTracker(5), cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Hit all three
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/one", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "one" {
		t.Fatalf("GET /one got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/two", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "two" {
		t.Fatalf("GET /two got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("GET /api/ping got %d %q", rec.Code, rec.Body.String())
	}
}

// Smoke test that a request traverses otel + gzip + ratelimit + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseCfg()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // enabled (but only set on https)
	db := newTestDB(t)
	RegisterRoutes(r, db, fakeChat{}, fakeSpeech{}, quota.NewTracker(5), cfg)

	// Any request goes through the middleware stack
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// simulate https so HSTS could be eligible if middleware checks scheme
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func Test_usageRepoShim_Proxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	shim := usageRepoShim{}
	ctx := context.Background()

	// empty ledger
	n, err := shim.CountUsage(ctx, db, "")
	if err != nil || n != 0 {
		t.Fatalf("CountUsage empty: n=%d err=%v", n, err)
	}
	cnt, maxTS, err := shim.UsageStats(ctx, db, "")
	if err != nil || cnt != 0 || maxTS != nil {
		t.Fatalf("UsageStats empty: cnt=%d max=%v err=%v", cnt, maxTS, err)
	}

	// seed rows through the repo the shim proxies
	for i := 0; i < 3; i++ {
		if _, err := repo.InsertUsage(ctx, db, "u1", "daily", domain.OpChat, "openai", domain.StatusOK, 250*time.Millisecond); err != nil {
			t.Fatalf("InsertUsage: %v", err)
		}
	}
	if _, err := repo.InsertUsage(ctx, db, "u2", "office", domain.OpSpeech, "google", domain.StatusError, 90*time.Millisecond); err != nil {
		t.Fatalf("InsertUsage u2: %v", err)
	}

	// --- CountUsage ---
	n, err = shim.CountUsage(ctx, db, "u1")
	if err != nil || n != 3 {
		t.Fatalf("CountUsage u1: n=%d err=%v", n, err)
	}
	n, err = shim.CountUsage(ctx, db, "")
	if err != nil || n != 4 {
		t.Fatalf("CountUsage all: n=%d err=%v", n, err)
	}

	// --- ListUsagePage ---
	page, err := shim.ListUsagePage(ctx, db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("ListUsagePage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("ListUsagePage expected 2, got %d", len(page))
	}

	// --- UsageStats ---
	cnt, maxTS, err = shim.UsageStats(ctx, db, "u1")
	if err != nil || cnt != 3 || maxTS == nil {
		t.Fatalf("UsageStats u1: cnt=%d max=%v err=%v", cnt, maxTS, err)
	}
}

// Full request lifecycle through the wired router: chat twice within budget,
// get rejected on the third turn, inspect the quota snapshot and the ledger.
func TestRegisterRoutes_ChatFlow_QuotaLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseCfg()
	db := newTestDB(t)
	RegisterRoutes(r, db, fakeChat{}, fakeSpeech{}, quota.NewTracker(2), cfg)

	postChat := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/agent/chat",
			bytes.NewBufferString(`{"user_id":"flow-user","mode":"daily","message":"おはよう"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	// two turns within budget
	for i := 0; i < 2; i++ {
		w := postChat()
		if w.Code != http.StatusOK {
			t.Fatalf("turn %d: status=%d body=%s", i+1, w.Code, w.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["reply"] != "こんにちは！" {
			t.Fatalf("turn %d: body=%s err=%v", i+1, w.Body.String(), err)
		}
	}

	// third turn exceeds the budget
	w := postChat()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" || w.Header().Get("X-Quota-Reset") == "" {
		t.Fatalf("reset headers missing: %v", w.Header())
	}
	var er map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er["code"] != "rate_limited" {
		t.Fatalf("429 body=%s err=%v", w.Body.String(), err)
	}

	// snapshot reflects the exhausted window without consuming quota
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/agent/quota?user_id=flow-user", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("quota status=%d", w.Code)
	}
	var snap map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("quota json: %v", err)
	}
	if snap["used"] != float64(2) || snap["remaining"] != float64(0) || snap["limit"] != float64(2) {
		t.Fatalf("snapshot=%#v", snap)
	}

	// both admitted turns were recorded in the ledger; the rejected one was not
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/usage?user_id=flow-user", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("usage status=%d", w.Code)
	}
	var list struct {
		Usage      []domain.UsageLog `json:"usage"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("usage json: %v", err)
	}
	if list.Pagination.Total != 2 || len(list.Usage) != 2 {
		t.Fatalf("ledger rows=%d total=%d", len(list.Usage), list.Pagination.Total)
	}
	for _, row := range list.Usage {
		if row.Op != domain.OpChat || row.Status != domain.StatusOK || row.Mode != "daily" {
			t.Fatalf("ledger row=%+v", row)
		}
	}
}

// The speech route returns raw audio through the full middleware stack.
func TestRegisterRoutes_SpeakFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := baseCfg()
	db := newTestDB(t)
	RegisterRoutes(r, db, fakeChat{}, fakeSpeech{}, quota.NewTracker(2), cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/agent/speak",
		bytes.NewBufferString(`{"user_id":"flow-user","text":"いらっしゃいませ"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("content type=%q", ct)
	}
	if w.Body.String() != "mp3" {
		t.Fatalf("audio=%q", w.Body.String())
	}
}

func TestRegisterRoutes_SwaggerToggle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// disabled: route absent
	{
		r := gin.New()
		cfg := baseCfg()
		RegisterRoutes(r, newTestDB(t), fakeChat{}, fakeSpeech{}, quota.NewTracker(2), cfg)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("disabled swagger: status=%d", w.Code)
		}
	}

	// enabled: UI route mounted
	{
		r := gin.New()
		cfg := baseCfg()
		cfg.SwaggerEnabled = true
		RegisterRoutes(r, newTestDB(t), fakeChat{}, fakeSpeech{}, quota.NewTracker(2), cfg)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("enabled swagger: status=%d", w.Code)
		}
	}
}
