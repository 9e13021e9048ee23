// Package provider – OpenAI adapters
//
// OpenAIChat speaks the chat-completions API of api.openai.com or any
// OpenAI-compatible endpoint selected via base URL, which is how alternative
// vendors are plugged in without code changes. OpenAISpeech drives the
// /audio/speech endpoint for text-to-speech.
//
// Credentials and model names are checked at call time, not construction
// time, so a misconfigured deployment starts up and reports config errors
// per request instead of crash-looping.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ProviderOpenAI labels OpenAI-backed adapters in errors and metrics.
const ProviderOpenAI = "openai"

// OpenAIConfig carries the settings shared by both OpenAI adapters.
type OpenAIConfig struct {
	// APIKey authenticates against the endpoint.
	APIKey string
	// BaseURL overrides the default https://api.openai.com/v1 endpoint.
	BaseURL string
	// Model names the chat or speech model to invoke.
	Model string
}

func newOpenAIClient(cfg OpenAIConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}

// OpenAIChat produces chat replies via the chat-completions API.
type OpenAIChat struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIChat constructs the chat adapter. An empty key or model is
// permitted here and rejected on use.
func NewOpenAIChat(cfg OpenAIConfig) *OpenAIChat {
	return &OpenAIChat{
		client: newOpenAIClient(cfg),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Complete sends one system instruction and one user message and returns the
// model's reply text verbatim.
func (p *OpenAIChat) Complete(ctx context.Context, systemInstruction, userMessage string) (reply string, err error) {
	defer func(start time.Time) { observe(ProviderOpenAI, opChat, start, err) }(time.Now())

	if p.apiKey == "" || p.model == "" {
		return "", ErrNotConfigured
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", wrapOpenAIError(opChat, err)
	}
	if len(resp.Choices) == 0 {
		return "", callErr(ProviderOpenAI, opChat, errors.New("empty completion response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAISpeech renders text to MP3 audio via the speech API.
type OpenAISpeech struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAISpeech constructs the speech adapter. An empty model falls back
// to tts-1.
func NewOpenAISpeech(cfg OpenAIConfig) *OpenAISpeech {
	model := cfg.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAISpeech{
		client: newOpenAIClient(cfg),
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Synthesize renders text with the given voice and returns MP3 bytes.
func (p *OpenAISpeech) Synthesize(ctx context.Context, text, voice string) (audio Audio, err error) {
	defer func(start time.Time) { observe(ProviderOpenAI, opSpeech, start, err) }(time.Now())

	if p.apiKey == "" {
		return Audio{}, ErrNotConfigured
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	res, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return Audio{}, wrapOpenAIError(opSpeech, err)
	}
	defer res.Close()

	b, err := io.ReadAll(res)
	if err != nil {
		return Audio{}, callErr(ProviderOpenAI, opSpeech, fmt.Errorf("reading audio stream: %w", err))
	}
	return Audio{Bytes: b, ContentType: "audio/mpeg"}, nil
}

// wrapOpenAIError folds an SDK error into the boundary taxonomy. Billing and
// quota rejections become ErrQuotaExhausted; everything else keeps the
// upstream message as a sanitized string.
func wrapOpenAIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isOpenAIQuota(apiErr) {
			return callErr(ProviderOpenAI, op, fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Message))
		}
		return callErr(ProviderOpenAI, op, fmt.Errorf("upstream status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}
	return callErr(ProviderOpenAI, op, err)
}

// isOpenAIQuota recognizes the API's billing-exhaustion shapes: a 402, or the
// insufficient_quota code the API attaches to 429s on expired credit.
func isOpenAIQuota(apiErr *openai.APIError) bool {
	if apiErr.HTTPStatusCode == http.StatusPaymentRequired {
		return true
	}
	if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
		return true
	}
	return apiErr.Type == "insufficient_quota"
}
