// Package services – SpeechService
//
// This file implements SpeechService, which renders text to audio through a
// speech provider. The speech path is independent of the persona system and
// the daily quota; its one special concern is distinguishing upstream
// billing/quota exhaustion (provider.ErrQuotaExhausted) from generic
// failure, so callers can be told that voice output is unavailable while
// text chat still works. Both outcomes pass through unchanged for the
// handler layer to translate.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/dramalab/go-drama-agent/internal/domain"
	"github.com/dramalab/go-drama-agent/internal/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SpeechProvider is the single upstream call the speech pipeline depends on.
type SpeechProvider interface {
	// Synthesize renders text with the given voice and returns encoded audio.
	Synthesize(ctx context.Context, text, voice string) (provider.Audio, error)
}

// SpeechService coordinates validation, voice defaulting, and the provider
// call for the speech endpoint.
type SpeechService struct {
	// DB is the GORM handle for the usage ledger. Nil disables ledger writes.
	DB *gorm.DB
	// Provider renders the audio.
	Provider SpeechProvider
	// ProviderName labels ledger rows and spans, e.g. "google_tts".
	ProviderName string

	// DefaultVoice is applied when a request does not name a voice.
	DefaultVoice string
	// CallTimeout bounds each outbound provider call.
	CallTimeout time.Duration
	// MaxTextRunes caps accepted text length by rune count.
	MaxTextRunes int
}

// NewSpeechService constructs a SpeechService with the default guards.
func NewSpeechService(db *gorm.DB, p SpeechProvider, providerName, defaultVoice string) *SpeechService {
	return &SpeechService{
		DB:           db,
		Provider:     p,
		ProviderName: providerName,
		DefaultVoice: defaultVoice,
		CallTimeout:  60 * time.Second,
		MaxTextRunes: 1000,
	}
}

// Speak renders text to audio. The identity is recorded in the usage ledger
// when supplied and may be empty; speech is not quota-gated.
//
// Error contract:
//   - ErrEmptyText / ErrTooLong for invalid input
//   - provider.ErrQuotaExhausted (possibly wrapped) when the upstream
//     reports billing/quota exhaustion
//   - other provider taxonomy errors for generic upstream failure
func (s *SpeechService) Speak(ctx context.Context, identity, text, voice string) (provider.Audio, error) {
	tr := otel.Tracer("services/SpeechService")
	ctx, span := tr.Start(ctx, "Speak",
		trace.WithAttributes(
			attribute.String("user.id", identity),
			attribute.String("speech.voice", voice),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return provider.Audio{}, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return provider.Audio{}, ErrTooLong
	}
	if voice == "" {
		voice = s.DefaultVoice
	}

	callCtx := ctx
	if s.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	audio, err := s.Provider.Synthesize(callCtx, text, voice)
	recordUsage(ctx, s.DB, identity, "", domain.OpSpeech, s.ProviderName, err, time.Since(start))
	if err != nil {
		return provider.Audio{}, err
	}
	return audio, nil
}
