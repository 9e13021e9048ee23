package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Clear all env that might affect defaults. t.Setenv isolates per test.
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("PROVIDER_TIMEOUT", "30s")

	// Providers
	t.Setenv("LLM_PROVIDER", "OpenAI") // will normalize to "openai"
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_API_BASE", "http://llm.local/v1")
	t.Setenv("LLM_MODEL", "gpt-4.1")
	t.Setenv("SPEECH_PROVIDER", "google")
	t.Setenv("SPEECH_MODEL", "tts-1-hd")
	t.Setenv("SPEECH_VOICE", "ja-JP-Wavenet-A")
	t.Setenv("SPEECH_LANGUAGE", "ja-JP")

	// Quota
	t.Setenv("QUOTA_DAILY_LIMIT", "7")
	t.Setenv("QUOTA_WINDOW", "12h")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" || cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}

	// Providers
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "sk-test" || cfg.LLM.APIBase != "http://llm.local/v1" || cfg.LLM.Model != "gpt-4.1" {
		t.Fatalf("llm config unexpected: %+v", cfg.LLM)
	}
	if cfg.Speech.Provider != "google" || cfg.Speech.Model != "tts-1-hd" || cfg.Speech.Voice != "ja-JP-Wavenet-A" || cfg.Speech.Language != "ja-JP" {
		t.Fatalf("speech config unexpected: %+v", cfg.Speech)
	}

	// Quota
	if cfg.Quota.DailyLimit != 7 || cfg.Quota.Window != 12*time.Hour {
		t.Fatalf("quota config unexpected: %+v", cfg.Quota)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ProviderModelDefaults(t *testing.T) {
	t.Run("openai model default", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "openai")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.LLM.Model != "gpt-4.1-mini" {
			t.Fatalf("expected openai model default, got %q", cfg.LLM.Model)
		}
		if cfg.Speech.Voice != "alloy" {
			t.Fatalf("expected openai voice default, got %q", cfg.Speech.Voice)
		}
	})
	t.Run("gemini model default", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "gemini")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.LLM.Model != "gemini-2.0-flash-001" {
			t.Fatalf("expected gemini model default, got %q", cfg.LLM.Model)
		}
	})
	t.Run("google voice default", func(t *testing.T) {
		t.Setenv("SPEECH_PROVIDER", "google")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Speech.Voice != "ja-JP-Neural2-B" {
			t.Fatalf("expected google voice default, got %q", cfg.Speech.Voice)
		}
	})
	t.Run("explicit model wins", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("LLM_MODEL", "gemini-2.5-pro")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.LLM.Model != "gemini-2.5-pro" {
			t.Fatalf("explicit model should not be overridden, got %q", cfg.LLM.Model)
		}
	})
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("invalid LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil {
			t.Fatalf("expected LOG_LEVEL validation error")
		}
	})
	t.Run("empty PORT via spaces", func(t *testing.T) {
		t.Setenv("PORT", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "PORT must not be empty") {
			t.Fatalf("expected port validation error, got: %v", err)
		}
	})
	t.Run("non-positive timeouts", func(t *testing.T) {
		t.Setenv("READ_TIMEOUT", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "timeouts must be positive") {
			t.Fatalf("expected timeouts validation error, got: %v", err)
		}
	})
	t.Run("max header bytes <= 0", func(t *testing.T) {
		t.Setenv("MAX_HEADER_BYTES", "0")
		if _, err := Load(); err == nil || !containsErr(err, "MAX_HEADER_BYTES") {
			t.Fatalf("expected MAX_HEADER_BYTES validation error, got: %v", err)
		}
	})
	t.Run("empty DB_PATH", func(t *testing.T) {
		t.Setenv("DB_PATH", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "DB_PATH must not be empty") {
			t.Fatalf("expected DB_PATH validation error, got: %v", err)
		}
	})
	t.Run("provider timeout non-positive", func(t *testing.T) {
		t.Setenv("PROVIDER_TIMEOUT", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "PROVIDER_TIMEOUT") {
			t.Fatalf("expected PROVIDER_TIMEOUT validation error, got: %v", err)
		}
	})
	t.Run("unknown LLM_PROVIDER", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "anthropic")
		if _, err := Load(); err == nil || !containsErr(err, "LLM_PROVIDER") {
			t.Fatalf("expected LLM_PROVIDER validation error, got: %v", err)
		}
	})
	t.Run("unknown SPEECH_PROVIDER", func(t *testing.T) {
		t.Setenv("SPEECH_PROVIDER", "polly")
		if _, err := Load(); err == nil || !containsErr(err, "SPEECH_PROVIDER") {
			t.Fatalf("expected SPEECH_PROVIDER validation error, got: %v", err)
		}
	})
	t.Run("quota daily limit < 1", func(t *testing.T) {
		t.Setenv("QUOTA_DAILY_LIMIT", "0")
		if _, err := Load(); err == nil || !containsErr(err, "QUOTA_DAILY_LIMIT") {
			t.Fatalf("expected QUOTA_DAILY_LIMIT validation error, got: %v", err)
		}
	})
	t.Run("quota window non-positive", func(t *testing.T) {
		t.Setenv("QUOTA_WINDOW", "-1h")
		if _, err := Load(); err == nil || !containsErr(err, "QUOTA_WINDOW") {
			t.Fatalf("expected QUOTA_WINDOW validation error, got: %v", err)
		}
	})
	t.Run("rate rps negative", func(t *testing.T) {
		t.Setenv("RATE_RPS", "-1")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_RPS") {
			t.Fatalf("expected RATE_RPS validation error, got: %v", err)
		}
	})
	t.Run("rate burst < 1", func(t *testing.T) {
		t.Setenv("RATE_BURST", "0")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_BURST") {
			t.Fatalf("expected RATE_BURST validation error, got: %v", err)
		}
	})
	t.Run("hsts max age negative", func(t *testing.T) {
		t.Setenv("HSTS_MAX_AGE", "-1s")
		if _, err := Load(); err == nil || !containsErr(err, "HSTS_MAX_AGE") {
			t.Fatalf("expected HSTS_MAX_AGE validation error, got: %v", err)
		}
	})
	t.Run("otel sample ratio out of range", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")
		if _, err := Load(); err == nil || !containsErr(err, "OTEL_TRACES_SAMPLER_ARG") {
			t.Fatalf("expected OTEL_TRACES_SAMPLER_ARG validation error, got: %v", err)
		}
	})

	// Note: API_BASE_PATH validation is effectively unreachable due to normalizeBasePath
	// always ensuring a leading '/' and returning "/" for empty input.
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		k := "B_T_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		k := "B_F_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	// Unset, empty, and unrecognized values keep the default.
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool empty-var default behavior unexpected")
	}
	t.Setenv("B_GIBBERISH", "maybe")
	if !getbool("B_GIBBERISH", true) || getbool("B_GIBBERISH", false) {
		t.Fatalf("getbool unrecognized-value default behavior unexpected")
	}
}

func TestHelpers_splitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\") = %#v; want nil", out)
	}
	if out := splitCSV(" , ,"); out != nil {
		t.Fatalf("splitCSV(blanks) = %#v; want nil", out)
	}
	got := splitCSV(" a, ,b ,  c  ,")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}
}

func TestHelpers_normalizeBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{" / ", "/"},
		{"v1", "/v1"},
		{"/v1/", "/v1"},
		{"/api/v1", "/api/v1"},
		{"api/v1/", "/api/v1"},
	}
	for _, tt := range tests {
		if got := normalizeBasePath(tt.in); got != tt.want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

// Ensure tests don't leak env to others.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestLoad_Defaults(t *testing.T) {
	// Intentionally leave everything unset; defaults must be valid.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// default per code is "/api/v1"
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
	if cfg.Quota.DailyLimit != 5 || cfg.Quota.Window != 24*time.Hour {
		t.Fatalf("quota defaults unexpected: %+v", cfg.Quota)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIBase != "https://api.openai.com/v1" {
		t.Fatalf("llm defaults unexpected: %+v", cfg.LLM)
	}
	// APIKey remains empty when unset; misconfiguration is surfaced per request
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty LLM_API_KEY when unset, got %q", cfg.LLM.APIKey)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Fatalf("PROVIDER_TIMEOUT default unexpected: %v", cfg.ProviderTimeout)
	}
	if cfg.Speech.Provider != "openai" || cfg.Speech.Language != "ja-JP" {
		t.Fatalf("speech defaults unexpected: %+v", cfg.Speech)
	}
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	// No special env needed; defaults are valid.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}
