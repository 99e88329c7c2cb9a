package audio

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// openAIVoices are the voices picked from for a random selection
var openAIVoices = []string{"alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer"}

// OpenAIProvider synthesizes speech with OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	pick   func(n int) int
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIURL != "" {
		clientConfig.BaseURL = config.OpenAIURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		pick:   rand.IntN,
	}, nil
}

// Synthesize returns MP3 audio for text and the voice used. OpenAI voices
// are not tied to a language, so the accent is requested through the
// instructions on models that accept them.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text, languageCode string, voice VoiceSelection) ([]byte, string, error) {
	if err := ValidateWord(text); err != nil {
		return nil, "", err
	}

	name := voice.Name()
	if voice.IsRandom() {
		name = openAIVoices[p.pick(len(openAIVoices))]
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          cleanText(text),
		Voice:          openai.SpeechVoice(name),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if p.supportsInstructions() {
		req.Instructions = p.instruction(languageCode)
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") && p.supportsInstructions() {
			return nil, "", fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try using --openai-tts-model tts-1-hd instead", err, p.config.OpenAIModel)
		}
		return nil, "", fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("no audio data received from OpenAI")
	}
	return audio, name, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview"
}

// instruction appends the accent matching languageCode to the configured instruction
func (p *OpenAIProvider) instruction(languageCode string) string {
	instruction := p.config.OpenAIInstruction
	var accent string
	switch strings.ToLower(languageCode) {
	case "en-us":
		accent = "Use a General American accent."
	case "en-gb":
		accent = "Use a British Received Pronunciation accent."
	case "en-au":
		accent = "Use an Australian accent."
	}
	if accent == "" {
		return instruction
	}
	if instruction == "" {
		return accent
	}
	return instruction + " " + accent
}

// cleanText removes punctuation that should not be spoken
func cleanText(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, punct := range []string{"!", "?", ".", ",", ";", ":", "\"", "(", ")", "[", "]", "{", "}"} {
		cleaned = strings.ReplaceAll(cleaned, punct, "")
	}
	return strings.TrimSpace(cleaned)
}
