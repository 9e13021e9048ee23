// Command server – JP Drama Agent API
//
// Boots the HTTP API: loads environment configuration (optionally from a
// .env file), configures logging and tracing, opens the usage ledger,
// constructs the provider adapters, and serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/dramalab/go-drama-agent/docs"
	"github.com/dramalab/go-drama-agent/internal/config"
	httpapi "github.com/dramalab/go-drama-agent/internal/http"
	"github.com/dramalab/go-drama-agent/internal/observability"
	"github.com/dramalab/go-drama-agent/internal/provider"
	"github.com/dramalab/go-drama-agent/internal/quota"
	"github.com/dramalab/go-drama-agent/internal/repo"
	"github.com/dramalab/go-drama-agent/internal/services"
	"github.com/dramalab/go-drama-agent/internal/sysutil"
)

// @title       JP Drama Agent API
// @version     1.0
// @description Persona-driven Japanese-drama chat agent with daily quotas and text-to-speech.
// @BasePath    /
func main() {
	// .env is optional; containerized deployments pass real environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    sysutil.IsTruthy(os.Getenv("NO_COLOR")),
		})
	}

	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev")

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open usage ledger")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate usage ledger")
	}

	chat, speech, closeProviders, err := buildProviders(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("construct providers")
	}
	defer closeProviders()

	tracker := quota.NewTracker(cfg.Quota.DailyLimit, quota.WithWindow(cfg.Quota.Window))

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, chat, speech, tracker, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("llm", cfg.LLM.Provider).
			Str("speech", cfg.Speech.Provider).
			Int("daily_limit", cfg.Quota.DailyLimit).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("server stopped")
}

// buildProviders constructs the chat and speech adapters selected by the
// configuration. The returned closer releases the Google TTS connection
// when that adapter is in use; otherwise it is a no-op.
func buildProviders(ctx context.Context, cfg config.Config) (services.ChatProvider, services.SpeechProvider, func(), error) {
	var chat services.ChatProvider
	switch cfg.LLM.Provider {
	case "gemini":
		g, err := provider.NewGeminiChat(ctx, provider.GeminiConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		chat = g
	default: // "openai" and compatible endpoints
		chat = provider.NewOpenAIChat(provider.OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.APIBase,
			Model:   cfg.LLM.Model,
		})
	}

	closer := func() {}
	var speech services.SpeechProvider
	switch cfg.Speech.Provider {
	case "google":
		g, err := provider.NewGoogleSpeech(ctx, provider.GoogleSpeechConfig{
			LanguageCode: cfg.Speech.Language,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		speech = g
		closer = func() { _ = g.Close() }
	default: // "openai"
		speech = provider.NewOpenAISpeech(provider.OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.APIBase,
			Model:   cfg.Speech.Model,
		})
	}

	return chat, speech, closer, nil
}
