package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/ankismart/internal"
)

// Runner executes the command modes
type Runner interface {
	Generate(ctx context.Context, word string) error
	Batch(ctx context.Context, words []string) error
	FromFile(ctx context.Context, path string) error
	Interactive(ctx context.Context, in io.Reader) error
	SyncModel(ctx context.Context) error
	ListModels(ctx context.Context) error
	Close()
}

// RunnerFactory builds a Runner from the resolved settings
type RunnerFactory func(ctx context.Context, settings *Settings) (Runner, error)

// CreateRootCommand creates and configures the root cobra command with
// its subcommands
func CreateRootCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ankismart [word]",
		Short: "AI-powered Anki flashcard generator",
		Long: `ankismart turns English words into Anki notes through AnkiConnect.

It asks a generative AI for definitions, pronunciations and examples,
records US and UK pronunciations with text-to-speech, illustrates the
concrete senses and creates or updates the note in your deck.

Examples:
  ankismart serendipity                 # Generate one card
  ankismart batch ephemeral eloquent    # Generate several cards
  ankismart from-file words.txt         # One word per line
  ankismart interactive                 # Prompt for words
  ankismart model sync                  # Install the "AI Word (R)" note type`,
		Args:          cobra.MaximumNArgs(1),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			InitConfig(flags.CfgFile)
			return SetupLogging(os.Stderr, viper.GetString("log.level"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return withRunner(cmd, flags, newRunner, func(r Runner) error {
				return r.Generate(cmd.Context(), args[0])
			})
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "generate <word>",
			Short: "Generate or update the card for one word",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.Generate(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "batch <word>...",
			Short: "Generate cards for several words",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.Batch(cmd.Context(), args)
				})
			},
		},
		&cobra.Command{
			Use:   "from-file <file>",
			Short: "Generate cards for the words in a file (one per line, # for comments)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.FromFile(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "interactive",
			Short: "Prompt for words until quit or exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.Interactive(cmd.Context(), cmd.InOrStdin())
				})
			},
		},
		modelCommand(flags, newRunner),
	)

	return rootCmd
}

func modelCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the note type",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "sync",
			Short: "Create the note type or refresh its templates and styling",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.SyncModel(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the note types and decks known to Anki",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, flags, newRunner, func(r Runner) error {
					return r.ListModels(cmd.Context())
				})
			},
		},
	)
	return cmd
}

func withRunner(cmd *cobra.Command, flags *Flags, newRunner RunnerFactory, run func(Runner) error) error {
	settings, err := LoadSettings(flags)
	if err != nil {
		return err
	}

	r, err := newRunner(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer r.Close()

	return run(r)
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ankismart.yaml)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Card flags
	pf.StringVarP(&flags.Deck, "deck", "d", flags.Deck, "Target deck")
	pf.StringVarP(&flags.Model, "model", "m", flags.Model, "Note type")
	pf.StringSliceVarP(&flags.Tags, "tags", "t", nil, "Tags for new notes (repeatable, default: ai-generated)")
	pf.BoolVar(&flags.NoImages, "no-images", false, "Skip images")
	pf.BoolVarP(&flags.Force, "force", "f", false, "Always create a new note, even if one exists")
	pf.BoolVar(&flags.UpdateTags, "update-tags", false, "Replace the tags of updated notes as well")
	pf.StringVar(&flags.ImageSource, "image-source", flags.ImageSource, "Image source: generate, search or none")
	pf.StringVar(&flags.AnkiURL, "anki-url", flags.AnkiURL, "AnkiConnect URL")

	// Provider flags
	pf.StringVar(&flags.AnalysisProvider, "ai-provider", flags.AnalysisProvider, "Text AI: gemini, openai or claude")
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech: google, openai or none")
	pf.StringVar(&flags.OpenAITTSModel, "openai-tts-model", flags.OpenAITTSModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")

	// Bind flags to viper
	bindFlagsToViper(pf)
}

func bindFlagsToViper(pf *pflag.FlagSet) {
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("anki.deck", pf.Lookup("deck"))
	viper.BindPFlag("anki.model", pf.Lookup("model"))
	viper.BindPFlag("anki.url", pf.Lookup("anki-url"))
	viper.BindPFlag("image.source", pf.Lookup("image-source"))
	viper.BindPFlag("analysis.provider", pf.Lookup("ai-provider"))
	viper.BindPFlag("audio.provider", pf.Lookup("audio-provider"))
	viper.BindPFlag("audio.openai_model", pf.Lookup("openai-tts-model"))
}
