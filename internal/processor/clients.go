package processor

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/ankismart/internal/analysis"
	"codeberg.org/snonux/ankismart/internal/audio"
	"codeberg.org/snonux/ankismart/internal/card"
	"codeberg.org/snonux/ankismart/internal/cli"
	"codeberg.org/snonux/ankismart/internal/image"
)

func newAnalyzer(ctx context.Context, s *cli.Settings) (*analysis.Client, error) {
	return analysis.New(ctx, analysis.Config{
		Provider:            s.AnalysisProvider,
		Model:               s.AnalysisModel,
		TranslationLanguage: s.TranslationLanguage,
		ImageSize:           s.ImageSize,
		GoogleAPIKey:        s.GoogleAIKey,
		OpenAIAPIKey:        s.OpenAIKey,
		AnthropicAPIKey:     s.AnthropicKey,
	})
}

// newSynthesizer returns nil when speech is disabled or cannot be set up;
// cards are then written without audio
func newSynthesizer(ctx context.Context, s *cli.Settings) audio.Synthesizer {
	if s.AudioProvider == "none" {
		return nil
	}

	config := audio.DefaultProviderConfig()
	config.Provider = s.AudioProvider
	config.GoogleAPIKey = s.GoogleTTSKey
	config.VoiceType = s.VoiceType
	config.SpeakingRate = s.SpeakingRate
	config.Pitch = s.Pitch
	config.OpenAIKey = s.OpenAIKey
	if s.OpenAITTSModel != "" {
		config.OpenAIModel = s.OpenAITTSModel
	}

	synth, err := audio.NewSynthesizer(ctx, config)
	if err != nil {
		slog.Warn("audio disabled", slog.String("provider", s.AudioProvider), slog.Any("error", err))
		return nil
	}
	return synth
}

// newImageSource returns nil when images are disabled or no backend is
// available
func newImageSource(ctx context.Context, s *cli.Settings, analyzer *analysis.Client) card.ImageSource {
	source, err := imageSource(ctx, s, analyzer)
	if err != nil {
		slog.Warn("images disabled", slog.String("source", s.ImageSource), slog.Any("error", err))
		return nil
	}
	return source
}

func imageSource(ctx context.Context, s *cli.Settings, analyzer *analysis.Client) (card.ImageSource, error) {
	switch s.ImageSource {
	case "none":
		return nil, nil
	case "search":
		searcher, err := newSearcher(ctx, s)
		if err != nil {
			return nil, err
		}
		return card.SearchedImages(image.NewWordSearch(searcher, image.NewDownloader(0, 0), s.ImageSize)), nil
	}

	switch s.ImageGenerator {
	case "openai":
		if s.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable")
		}
		return card.GeneratedImages(image.NewOpenAIGenerator(&image.OpenAIConfig{
			APIKey:    s.OpenAIKey,
			ImageSize: s.ImageSize,
		})), nil
	default:
		if analyzer == nil || !analyzer.CanGenerateImages() {
			return nil, fmt.Errorf("Google AI API key not found. Set GOOGLE_AI_API_KEY environment variable")
		}
		return card.GeneratedImages(analyzer), nil
	}
}

func newSearcher(ctx context.Context, s *cli.Settings) (image.Searcher, error) {
	if s.ImageSearchProvider == "pixabay" {
		if s.PixabayKey == "" {
			return nil, fmt.Errorf("Pixabay API key not found. Set PIXABAY_API_KEY environment variable")
		}
		return image.NewPixabayClient(s.PixabayKey), nil
	}
	return image.NewGoogleSearcher(ctx, image.GoogleConfig{
		APIKey:   s.GoogleSearchKey,
		EngineID: s.GoogleSearchCX,
	})
}
