// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tts implements text-to-speech synthesis with pluggable providers.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// ErrUnsupportedLanguage reports a language code the provider does not
// speak. This is a permanent condition: callers must not retry.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrEmptyText reports a synthesis request with no speakable content.
var ErrEmptyText = errors.New("empty input text")

// SynthesisError wraps a failure to synthesize speech.
type SynthesisError struct {
	Provider string
	Language string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s synthesis (lang %s): %v", e.Provider, e.Language, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Synthesizer converts text to spoken audio. Implementations return MP3
// bytes; the audio writer handles any further transcoding. Providers are
// swappable behind this interface without touching the job runner.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// New returns the synthesizer for the configured provider. The secrets map
// comes from the .secrets/ directory; providers that need an API key fall
// back to their conventional environment variable.
func New(cfg types.SynthesisConfig, secrets map[string]string) (Synthesizer, error) {
	switch cfg.Provider {
	case "google", "":
		return NewGoogleSynthesizer(cfg), nil
	case "openai":
		key := secrets["openai-api-key"]
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires an API key (.secrets/openai-api-key or OPENAI_API_KEY)")
		}
		return NewOpenAISynthesizer(cfg, key), nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", cfg.Provider)
	}
}
