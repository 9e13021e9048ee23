// Package provider – Gemini chat adapter
//
// GeminiChat targets the Gemini API through the google.golang.org/genai SDK.
// The system instruction travels in the request config rather than as a
// message, which is the Gemini equivalent of the OpenAI system role.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ProviderGemini labels the Gemini adapter in errors and metrics.
const ProviderGemini = "gemini"

// GeminiConfig carries the Gemini adapter settings.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. When empty, the SDK's
	// own environment lookup applies.
	APIKey string
	// Model names the Gemini model to invoke, e.g. "gemini-2.0-flash-001".
	Model string
}

// GeminiChat produces chat replies via the Gemini API.
type GeminiChat struct {
	client *genai.Client
	model  string
}

// NewGeminiChat constructs the Gemini adapter. Client construction performs
// no network I/O; credential problems surface on first use.
func NewGeminiChat(ctx context.Context, cfg GeminiConfig) (*GeminiChat, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiChat{client: client, model: cfg.Model}, nil
}

// Complete sends one system instruction and one user message and returns the
// model's reply text.
func (p *GeminiChat) Complete(ctx context.Context, systemInstruction, userMessage string) (reply string, err error) {
	defer func(start time.Time) { observe(ProviderGemini, opChat, start, err) }(time.Now())

	if p.model == "" {
		return "", ErrNotConfigured
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userMessage),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemInstruction}},
			},
		})
	if err != nil {
		return "", callErr(ProviderGemini, opChat, err)
	}

	text := resp.Text()
	if text == "" {
		return "", callErr(ProviderGemini, opChat, errors.New("empty generation response"))
	}
	return text, nil
}
