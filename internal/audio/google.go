package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// NoVoicesAvailableError is returned when a language has no usable voice
type NoVoicesAvailableError struct {
	LanguageCode string
	VoiceType    string
}

func (e *NoVoicesAvailableError) Error() string {
	if e.VoiceType != "" {
		return fmt.Sprintf("no %s voices available for %s", e.VoiceType, e.LanguageCode)
	}
	return fmt.Sprintf("no voices available for %s", e.LanguageCode)
}

// GoogleProvider synthesizes speech with Google Cloud Text-to-Speech.
// Voice lists are fetched once per language and kept for the lifetime of
// the provider.
type GoogleProvider struct {
	service      *texttospeech.Service
	voiceType    string
	speakingRate float64
	pitch        float64

	mu     sync.Mutex
	voices map[string][]string
	group  singleflight.Group
	pick   func(n int) int
}

// NewGoogleProvider creates a Google Cloud TTS provider
func NewGoogleProvider(ctx context.Context, config *Config) (*GoogleProvider, error) {
	if config.GoogleAPIKey == "" {
		return nil, fmt.Errorf("Google Cloud TTS key not found. Set GOOGLE_CLOUD_TTS_KEY environment variable")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.GoogleAPIKey)}
	if config.GoogleURL != "" {
		opts = append(opts, option.WithEndpoint(config.GoogleURL))
	}

	service, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech service: %w", err)
	}

	rate := config.SpeakingRate
	if rate == 0 {
		rate = 1.0
	}

	return &GoogleProvider{
		service:      service,
		voiceType:    config.VoiceType,
		speakingRate: rate,
		pitch:        config.Pitch,
		voices:       make(map[string][]string),
		pick:         rand.IntN,
	}, nil
}

// Name returns the provider name
func (g *GoogleProvider) Name() string {
	return "google"
}

// Voices returns the voice names for a language, fetching them on first use
func (g *GoogleProvider) Voices(ctx context.Context, languageCode string) ([]string, error) {
	g.mu.Lock()
	cached, ok := g.voices[languageCode]
	g.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := g.group.Do(languageCode, func() (any, error) {
		return g.fetchVoices(ctx, languageCode)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (g *GoogleProvider) fetchVoices(ctx context.Context, languageCode string) ([]string, error) {
	resp, err := g.service.Voices.List().LanguageCode(languageCode).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices for %s: %w", languageCode, err)
	}

	var all, matching []string
	for _, v := range resp.Voices {
		all = append(all, v.Name)
		if g.voiceType != "" && strings.Contains(v.Name, g.voiceType) {
			matching = append(matching, v.Name)
		}
	}

	names := matching
	if len(names) == 0 {
		if g.voiceType != "" && len(all) > 0 {
			slog.Warn("no voices of the requested type, using all voices",
				slog.String("language", languageCode), slog.String("type", g.voiceType))
		}
		names = all
	}
	if len(names) == 0 {
		return nil, &NoVoicesAvailableError{LanguageCode: languageCode, VoiceType: g.voiceType}
	}

	g.mu.Lock()
	g.voices[languageCode] = names
	g.mu.Unlock()

	slog.Debug("cached voices", slog.String("language", languageCode), slog.Int("count", len(names)))
	return names, nil
}

// Synthesize returns MP3 audio for text and the voice used
func (g *GoogleProvider) Synthesize(ctx context.Context, text, languageCode string, voice VoiceSelection) ([]byte, string, error) {
	if err := ValidateWord(text); err != nil {
		return nil, "", err
	}

	name := voice.Name()
	if voice.IsRandom() {
		names, err := g.Voices(ctx, languageCode)
		if err != nil {
			return nil, "", err
		}
		name = names[g.pick(len(names))]
	}

	resp, err := g.service.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         name,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  g.speakingRate,
			Pitch:         g.pitch,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("Google TTS API error: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("no audio data received from Google TTS")
	}
	return audio, name, nil
}
