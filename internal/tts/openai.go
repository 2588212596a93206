// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chriscod3/pdf-to-audio-converter/internal/httputil"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

var openAISpeechURL = "https://api.openai.com/v1/audio/speech"

const (
	openAIModel = "tts-1"
	openAIVoice = "alloy"
)

// OpenAISynthesizer speaks text through the OpenAI speech endpoint. The
// model infers the spoken language from the text itself; the language code
// is still validated so the CLI behaves the same across providers.
type OpenAISynthesizer struct {
	client     *http.Client
	apiKey     string
	maxRetries int
}

// NewOpenAISynthesizer creates the OpenAI-backed synthesizer.
func NewOpenAISynthesizer(cfg types.SynthesisConfig, apiKey string) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		client:     &http.Client{Timeout: cfg.Timeout},
		apiKey:     apiKey,
		maxRetries: cfg.MaxRetries,
	}
}

// Synthesize converts text to MP3 bytes.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if !Supported(language) {
		return nil, &SynthesisError{Provider: "openai", Language: language, Err: fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &SynthesisError{Provider: "openai", Language: language, Err: ErrEmptyText}
	}

	payload, _ := json.Marshal(map[string]any{
		"model":           openAIModel,
		"voice":           openAIVoice,
		"input":           text,
		"response_format": "mp3",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAISpeechURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &SynthesisError{Provider: "openai", Language: language, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.maxRetries)
	if err != nil {
		return nil, &SynthesisError{Provider: "openai", Language: language, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &SynthesisError{
			Provider: "openai",
			Language: language,
			Err:      fmt.Errorf("speech endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SynthesisError{Provider: "openai", Language: language, Err: err}
	}
	return audio, nil
}
