// Package analysis asks a generative AI backend to describe a word and
// parses the answer into WordSense records.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/snonux/ankismart/internal/image"
)

const (
	// DefaultTranslationLanguage is the language definitions and examples are translated into
	DefaultTranslationLanguage = "Simplified Chinese"

	// DefaultImageSize is the edge length of generated word pictures
	DefaultImageSize = 512
)

// TextGenerator answers a prompt with text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageModel answers a prompt with an encoded picture
type ImageModel interface {
	GenerateImage(ctx context.Context, word, prompt string) ([]byte, error)
}

// Config selects and configures the backends
type Config struct {
	Provider            string // gemini, openai or claude
	Model               string
	ImageModel          string
	TranslationLanguage string
	ImageSize           int

	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	BaseURL         string
}

// Client analyzes words and draws pictures for their definitions
type Client struct {
	text                TextGenerator
	images              ImageModel
	translationLanguage string
	imageSize           int
}

// NewClient wires a client from explicit backends; images may be nil
func NewClient(text TextGenerator, images ImageModel, translationLanguage string, imageSize int) *Client {
	if translationLanguage == "" {
		translationLanguage = DefaultTranslationLanguage
	}
	if imageSize <= 0 {
		imageSize = DefaultImageSize
	}
	return &Client{
		text:                text,
		images:              images,
		translationLanguage: translationLanguage,
		imageSize:           imageSize,
	}
}

// New creates a client for the configured provider. Pictures are always
// drawn by Gemini and are only available when a Google key is set.
func New(ctx context.Context, cfg Config) (*Client, error) {
	var (
		text   TextGenerator
		images ImageModel
		gemini *GeminiClient
		err    error
	)

	if cfg.GoogleAPIKey != "" {
		gemini, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.GoogleAPIKey,
			Model:      modelFor(cfg, "gemini"),
			ImageModel: cfg.ImageModel,
			BaseURL:    cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		images = gemini
	}

	switch provider := strings.ToLower(cfg.Provider); provider {
	case "", "gemini":
		if gemini == nil {
			return nil, fmt.Errorf("Google AI API key not found. Set GOOGLE_AI_API_KEY environment variable")
		}
		text = gemini
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable")
		}
		text = NewOpenAIClient(cfg.OpenAIAPIKey, modelFor(cfg, "openai"), cfg.BaseURL)
	case "claude":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key not found. Set ANTHROPIC_API_KEY environment variable")
		}
		text = NewClaudeClient(cfg.AnthropicAPIKey, modelFor(cfg, "claude"), cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", provider)
	}

	return NewClient(text, images, cfg.TranslationLanguage, cfg.ImageSize), nil
}

// modelFor returns the configured model only for the selected provider
func modelFor(cfg Config, provider string) string {
	selected := strings.ToLower(cfg.Provider)
	if selected == "" {
		selected = "gemini"
	}
	if selected == provider {
		return cfg.Model
	}
	return ""
}

// CanGenerateImages reports whether an image model is configured
func (c *Client) CanGenerateImages() bool {
	return c.images != nil
}

// Analyze returns the senses of word, strictly parsed
func (c *Client) Analyze(ctx context.Context, word string) ([]WordSense, error) {
	slog.Debug("analyzing word", slog.String("word", word))

	text, err := c.text.Generate(ctx, AnalysisPrompt(word, c.translationLanguage))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %q: %w", word, err)
	}

	senses, err := Parse(word, text)
	if err != nil {
		return nil, err
	}

	slog.Debug("analysis parsed", slog.String("word", word), slog.Int("senses", len(senses)))
	return senses, nil
}

// GenerateWordImage draws a square JPEG picture for one definition of word
func (c *Client) GenerateWordImage(ctx context.Context, word, definition string) ([]byte, error) {
	if c.images == nil {
		return nil, fmt.Errorf("no image model configured")
	}

	data, err := c.images.GenerateImage(ctx, word, ImagePrompt(word, definition))
	if err != nil {
		return nil, err
	}

	resized, err := image.Square(data, c.imageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image for %q: %w", word, err)
	}
	return resized, nil
}
