// Package provider – Google Cloud text-to-speech adapter
//
// GoogleSpeech wraps the Cloud Text-to-Speech gRPC client. Authentication
// uses Application Default Credentials, so there is no key to check at call
// time; credential problems surface as upstream errors. A ResourceExhausted
// status from the API is mapped to ErrQuotaExhausted so the speech endpoint
// can tell billing exhaustion apart from transient failure.
package provider

import (
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProviderGoogleTTS labels the Google adapter in errors and metrics.
const ProviderGoogleTTS = "google_tts"

// GoogleSpeechConfig carries the Google adapter settings.
type GoogleSpeechConfig struct {
	// LanguageCode selects the synthesis language, e.g. "ja-JP".
	LanguageCode string
}

// GoogleSpeech renders text to MP3 audio via Cloud Text-to-Speech.
type GoogleSpeech struct {
	client       *texttospeech.Client
	languageCode string
}

// NewGoogleSpeech constructs the Google speech adapter using Application
// Default Credentials. Close releases the underlying connection.
func NewGoogleSpeech(ctx context.Context, cfg GoogleSpeechConfig) (*GoogleSpeech, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating google tts client: %w", err)
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "ja-JP"
	}
	return &GoogleSpeech{client: client, languageCode: lang}, nil
}

// Close releases the gRPC connection.
func (p *GoogleSpeech) Close() error { return p.client.Close() }

// Synthesize renders text with the given voice name and returns MP3 bytes.
// An empty voice lets the API pick a default for the language.
func (p *GoogleSpeech) Synthesize(ctx context.Context, text, voice string) (audio Audio, err error) {
	defer func(start time.Time) { observe(ProviderGoogleTTS, opSpeech, start, err) }(time.Now())

	resp, err := p.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: p.languageCode,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		if status.Code(err) == codes.ResourceExhausted {
			return Audio{}, callErr(ProviderGoogleTTS, opSpeech, fmt.Errorf("%w: %v", ErrQuotaExhausted, err))
		}
		return Audio{}, callErr(ProviderGoogleTTS, opSpeech, err)
	}
	return Audio{Bytes: resp.GetAudioContent(), ContentType: "audio/mpeg"}, nil
}
