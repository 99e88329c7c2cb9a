package analysis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel answers analysis prompts
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultGeminiImageModel draws word pictures
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
)

// imageSafety blocks medium and higher risk content in every category
var imageSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// GeminiClient generates analysis text and pictures with the Gemini API
type GeminiClient struct {
	client     *genai.Client
	model      string
	imageModel string
}

// GeminiConfig holds the Gemini settings
type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string // Overrides the API endpoint, used by tests
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultGeminiImageModel
	}

	return &GeminiClient{
		client:     client,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

// Generate returns the text answer to prompt
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return resp.Text(), nil
}

// GenerateImage returns the first inline image of the answer to prompt
func (c *GeminiClient) GenerateImage(ctx context.Context, word, prompt string) ([]byte, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SafetySettings:     imageSafety,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image request failed: %w", err)
	}

	genErr := &ImageGenerationError{Word: word, FinishReason: "UNKNOWN"}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		genErr.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, genErr
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != "" {
		genErr.FinishReason = string(candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, genErr
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		if strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, genErr
}
