// Package audio synthesizes MP3 pronunciations for words.
package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// VoiceSelection picks the voice for one synthesis: a named voice, or a
// random one from the provider's voices for the language
type VoiceSelection struct {
	name string
}

// RandomVoice selects a random voice for the language
func RandomVoice() VoiceSelection {
	return VoiceSelection{}
}

// NamedVoice selects a specific voice
func NamedVoice(name string) VoiceSelection {
	return VoiceSelection{name: name}
}

// Name returns the requested voice, or "" for a random one
func (v VoiceSelection) Name() string {
	return v.name
}

// IsRandom reports whether no specific voice was requested
func (v VoiceSelection) IsRandom() bool {
	return v.name == ""
}

// Synthesizer turns text into MP3 audio
type Synthesizer interface {
	// Synthesize returns MP3 audio and the name of the voice used
	Synthesize(ctx context.Context, text, languageCode string, voice VoiceSelection) ([]byte, string, error)

	// Name returns the provider name
	Name() string
}

// Config holds configuration for the speech providers
type Config struct {
	Provider string // google or openai

	// Google Cloud TTS settings
	GoogleAPIKey string
	VoiceType    string  // Substring voice names must contain, e.g. "Wavenet"
	SpeakingRate float64 // 0.25 to 4.0
	Pitch        float64 // -20.0 to 20.0
	GoogleURL    string  // Overrides the API endpoint, used by tests

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model
	OpenAIURL         string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "google",
		VoiceType:    "Wavenet",
		SpeakingRate: 1.0,
		Pitch:        0.0,
		OpenAIModel:  "gpt-4o-mini-tts",
		OpenAISpeed:  1.0,
		OpenAIInstruction: "Pronounce the English word clearly and naturally, " +
			"the way a dictionary recording would, for language learners.",
	}
}

// NewSynthesizer creates the configured provider. With both keys present
// the other provider becomes the fallback.
func NewSynthesizer(ctx context.Context, config *Config) (Synthesizer, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "google", "":
		primary, err := NewGoogleProvider(ctx, config)
		if err != nil {
			return nil, err
		}
		if config.OpenAIKey == "" {
			return primary, nil
		}
		fallback, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return NewFallback(primary, fallback), nil

	case "openai":
		primary, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		if config.GoogleAPIKey == "" {
			return primary, nil
		}
		fallback, err := NewGoogleProvider(ctx, config)
		if err != nil {
			return nil, err
		}
		return NewFallback(primary, fallback), nil

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// Fallback wraps a primary synthesizer with a secondary one
type Fallback struct {
	primary  Synthesizer
	fallback Synthesizer
}

// NewFallback creates a synthesizer that falls back to secondary if primary fails
func NewFallback(primary, fallback Synthesizer) *Fallback {
	return &Fallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Synthesize tries the primary provider first, falls back to secondary on error.
// A named voice belongs to the primary provider, so the fallback picks its own.
func (p *Fallback) Synthesize(ctx context.Context, text, languageCode string, voice VoiceSelection) ([]byte, string, error) {
	audio, name, err := p.primary.Synthesize(ctx, text, languageCode, voice)
	if err == nil {
		return audio, name, nil
	}
	if ctx.Err() != nil {
		return nil, "", err
	}

	slog.Warn("primary speech provider failed, falling back",
		slog.String("primary", p.primary.Name()),
		slog.String("fallback", p.fallback.Name()),
		slog.String("error", err.Error()))

	audio, name, fallbackErr := p.fallback.Synthesize(ctx, text, languageCode, RandomVoice())
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("both providers failed: primary=%v, fallback=%w", err, fallbackErr)
	}
	return audio, name, nil
}

// Name returns the provider name
func (p *Fallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}
