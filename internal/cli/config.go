package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults for the card target
const (
	DefaultDeck  = "English::AI Words"
	DefaultModel = "AI Word (R)"
)

// Settings is the resolved configuration of one run: config file,
// environment and flags merged by viper, plus the API keys
type Settings struct {
	AnkiURL     string
	AnkiTimeout time.Duration
	Deck        string
	Model       string
	Tags        []string
	ForceNew    bool
	UpdateTags  bool

	AnalysisProvider    string // gemini, openai or claude
	AnalysisModel       string
	TranslationLanguage string

	AudioProvider  string // google, openai or none
	VoiceType      string
	SpeakingRate   float64
	Pitch          float64
	OpenAITTSModel string

	ImageSource         string // generate, search or none
	ImageGenerator      string // gemini or openai
	ImageSearchProvider string // google or pixabay
	ImageSize           int

	LogLevel string

	GoogleAIKey     string
	GoogleTTSKey    string
	GoogleSearchKey string
	GoogleSearchCX  string
	OpenAIKey       string
	AnthropicKey    string
	PixabayKey      string
}

// Validate checks enumerations, ranges and the bridge URL
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.AnkiURL, validation.Required, is.URL),
		validation.Field(&s.AnkiTimeout, validation.Min(time.Second)),
		validation.Field(&s.Deck, validation.Required),
		validation.Field(&s.Model, validation.Required),
		validation.Field(&s.AnalysisProvider, validation.In("gemini", "openai", "claude")),
		validation.Field(&s.AudioProvider, validation.In("google", "openai", "none")),
		validation.Field(&s.SpeakingRate, validation.Min(0.25), validation.Max(4.0)),
		validation.Field(&s.Pitch, validation.Min(-20.0), validation.Max(20.0)),
		validation.Field(&s.ImageSource, validation.In("generate", "search", "none")),
		validation.Field(&s.ImageGenerator, validation.In("gemini", "openai")),
		validation.Field(&s.ImageSearchProvider, validation.In("google", "pixabay")),
		validation.Field(&s.ImageSize, validation.Min(64), validation.Max(2048)),
		validation.Field(&s.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// SetDefaults registers the default of every configuration key
func SetDefaults() {
	viper.SetDefault("anki.url", "http://localhost:8765")
	viper.SetDefault("anki.timeout", 30*time.Second)
	viper.SetDefault("anki.deck", DefaultDeck)
	viper.SetDefault("anki.model", DefaultModel)
	viper.SetDefault("anki.tags", []string{})
	viper.SetDefault("analysis.provider", "gemini")
	viper.SetDefault("analysis.model", "")
	viper.SetDefault("analysis.translation_language", "Simplified Chinese")
	viper.SetDefault("audio.provider", "google")
	viper.SetDefault("audio.voice_type", "Wavenet")
	viper.SetDefault("audio.speaking_rate", 1.0)
	viper.SetDefault("audio.pitch", 0.0)
	viper.SetDefault("audio.openai_model", "gpt-4o-mini-tts")
	viper.SetDefault("image.source", "generate")
	viper.SetDefault("image.generator", "gemini")
	viper.SetDefault("image.search_provider", "google")
	viper.SetDefault("image.size", 512)
	viper.SetDefault("log.level", "warn")
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded into the environment first.
func InitConfig(cfgFile string) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ankismart" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ankismart")
	}

	// Environment variables, e.g. ANKISMART_ANKI_DECK
	viper.SetEnvPrefix("ANKISMART")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("anki.url", "ANKISMART_ANKI_URL", "ANKI_CONNECT_URL")

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("using config file", slog.String("path", viper.ConfigFileUsed()))
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// LoadSettings resolves the settings of a run from viper and flags and
// validates them
func LoadSettings(flags *Flags) (*Settings, error) {
	s := &Settings{
		AnkiURL:     viper.GetString("anki.url"),
		AnkiTimeout: viper.GetDuration("anki.timeout"),
		Deck:        viper.GetString("anki.deck"),
		Model:       viper.GetString("anki.model"),
		Tags:        viper.GetStringSlice("anki.tags"),
		ForceNew:    flags.Force,
		UpdateTags:  flags.UpdateTags,

		AnalysisProvider:    viper.GetString("analysis.provider"),
		AnalysisModel:       viper.GetString("analysis.model"),
		TranslationLanguage: viper.GetString("analysis.translation_language"),

		AudioProvider:  viper.GetString("audio.provider"),
		VoiceType:      viper.GetString("audio.voice_type"),
		SpeakingRate:   viper.GetFloat64("audio.speaking_rate"),
		Pitch:          viper.GetFloat64("audio.pitch"),
		OpenAITTSModel: viper.GetString("audio.openai_model"),

		ImageSource:         viper.GetString("image.source"),
		ImageGenerator:      viper.GetString("image.generator"),
		ImageSearchProvider: viper.GetString("image.search_provider"),
		ImageSize:           viper.GetInt("image.size"),

		LogLevel: viper.GetString("log.level"),

		GoogleAIKey:     apiKey("GOOGLE_AI_API_KEY", "keys.google_ai"),
		GoogleTTSKey:    apiKey("GOOGLE_CLOUD_TTS_KEY", "keys.google_tts"),
		GoogleSearchKey: apiKey("GOOGLE_CUSTOM_SEARCH_KEY", "keys.google_search"),
		GoogleSearchCX:  apiKey("GOOGLE_SEARCH_ENGINE_ID", "keys.google_search_engine"),
		OpenAIKey:       apiKey("OPENAI_API_KEY", "keys.openai"),
		AnthropicKey:    apiKey("ANTHROPIC_API_KEY", "keys.anthropic"),
		PixabayKey:      apiKey("PIXABAY_API_KEY", "keys.pixabay"),
	}

	if len(flags.Tags) > 0 {
		s.Tags = flags.Tags
	}
	if flags.NoImages {
		s.ImageSource = "none"
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// apiKey reads a key from the environment first, then from the config file
func apiKey(env, key string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return viper.GetString(key)
}
