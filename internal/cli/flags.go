package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	LogLevel string

	// Card flags
	Deck        string
	Model       string
	Tags        []string
	NoImages    bool
	Force       bool
	UpdateTags  bool
	ImageSource string
	AnkiURL     string

	// Provider flags
	AnalysisProvider string
	AudioProvider    string
	OpenAITTSModel   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:         "warn",
		Deck:             DefaultDeck,
		Model:            DefaultModel,
		ImageSource:      "generate",
		AnkiURL:          "http://localhost:8765",
		AnalysisProvider: "gemini",
		AudioProvider:    "google",
		OpenAITTSModel:   "gpt-4o-mini-tts",
	}
}
