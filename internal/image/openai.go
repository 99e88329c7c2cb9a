package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the DALL-E generator
type OpenAIConfig struct {
	APIKey    string
	Model     string // dall-e-2 or dall-e-3
	Size      string // e.g. 512x512 (dall-e-2) or 1024x1024 (dall-e-3)
	Quality   string // standard or hd, dall-e-3 only
	Style     string // natural or vivid, dall-e-3 only
	ImageSize int    // Edge of the returned square JPEG
	BaseURL   string
}

// OpenAIGenerator draws word pictures with DALL-E
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	size      string
	quality   string
	style     string
	imageSize int
}

// NewOpenAIGenerator creates a DALL-E generator
func NewOpenAIGenerator(config *OpenAIConfig) *OpenAIGenerator {
	if config.Model == "" {
		config.Model = openai.CreateImageModelDallE2
	}
	if config.Size == "" {
		config.Size = openai.CreateImageSize512x512
	}
	if config.ImageSize <= 0 {
		config.ImageSize = 512
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     config.Model,
		size:      config.Size,
		quality:   config.Quality,
		style:     config.Style,
		imageSize: config.ImageSize,
	}
}

// GenerateWordImage draws a square JPEG picture for one definition of word
func (g *OpenAIGenerator) GenerateWordImage(ctx context.Context, word, definition string) ([]byte, error) {
	req := openai.ImageRequest{
		Prompt:         g.prompt(word, definition),
		Model:          g.model,
		Size:           g.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	}
	if g.model == openai.CreateImageModelDallE3 {
		req.Quality = g.quality
		req.Style = g.style
	}

	resp, err := g.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("DALL-E request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: DALL-E returned no image for %q", ErrNoImage, word)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode DALL-E image: %w", err)
	}
	return Square(data, g.imageSize)
}

// prompt describes a simple flashcard illustration without any text
func (g *OpenAIGenerator) prompt(word, definition string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A simple, clear educational illustration for a vocabulary flashcard showing %q", strings.TrimSpace(word))
	if definition = strings.TrimSpace(definition); definition != "" {
		fmt.Fprintf(&b, " in the sense of: %s", definition)
	}
	b.WriteString(". Flat style, plain light background, one central subject, no text, letters or numbers.")
	return b.String()
}
