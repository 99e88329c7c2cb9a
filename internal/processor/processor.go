package processor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"codeberg.org/snonux/ankismart/internal/ankiconnect"
	"codeberg.org/snonux/ankismart/internal/audio"
	"codeberg.org/snonux/ankismart/internal/batch"
	"codeberg.org/snonux/ankismart/internal/card"
	"codeberg.org/snonux/ankismart/internal/cli"
	"codeberg.org/snonux/ankismart/internal/console"
	"codeberg.org/snonux/ankismart/internal/notemodel"
)

// Bridge is everything the processor needs from AnkiConnect
type Bridge interface {
	card.Bridge
	notemodel.Bridge
	ModelNames(ctx context.Context) ([]string, error)
	DeckNames(ctx context.Context) ([]string, error)
	Close()
}

// Deps are the collaborators of a Processor. Synthesizer and Images are
// optional.
type Deps struct {
	Analyzer    card.Analyzer
	Bridge      Bridge
	Synthesizer audio.Synthesizer
	Images      card.ImageSource
}

// Processor runs the command modes. It implements cli.Runner.
type Processor struct {
	settings  *cli.Settings
	bridge    Bridge
	generator *card.Generator
	printer   *console.Printer
	out       io.Writer
	images    bool
}

// New creates a processor writing to stdout
func New(ctx context.Context, s *cli.Settings) (*Processor, error) {
	return NewWithOutput(ctx, s, os.Stdout)
}

// NewWithOutput builds the clients named by the settings. A missing AI
// key is an error; missing speech or image keys only disable that step.
func NewWithOutput(ctx context.Context, s *cli.Settings, out io.Writer) (*Processor, error) {
	analyzer, err := newAnalyzer(ctx, s)
	if err != nil {
		return nil, err
	}

	return NewWithDeps(s, out, Deps{
		Analyzer:    analyzer,
		Bridge:      ankiconnect.New(ankiconnect.Config{URL: s.AnkiURL, Timeout: s.AnkiTimeout}),
		Synthesizer: newSynthesizer(ctx, s),
		Images:      newImageSource(ctx, s, analyzer),
	}), nil
}

// NewWithDeps creates a processor from ready collaborators
func NewWithDeps(s *cli.Settings, out io.Writer, deps Deps) *Processor {
	printer := console.NewPrinter(out)
	return &Processor{
		settings: s,
		bridge:   deps.Bridge,
		generator: card.NewGenerator(card.Config{
			Analyzer:    deps.Analyzer,
			Bridge:      deps.Bridge,
			Synthesizer: deps.Synthesizer,
			Images:      deps.Images,
			Progress:    printer,
		}),
		printer: printer,
		out:     out,
		images:  deps.Images != nil && s.ImageSource != "none",
	}
}

func (p *Processor) options() card.Options {
	return card.Options{
		Deck:       p.settings.Deck,
		Model:      p.settings.Model,
		Tags:       p.settings.Tags,
		ForceNew:   p.settings.ForceNew,
		Images:     p.images,
		UpdateTags: p.settings.UpdateTags,
	}
}

// Generate creates or updates the card for one word
func (p *Processor) Generate(ctx context.Context, word string) error {
	_, err := p.generator.Generate(ctx, word, p.options())
	return err
}

// Batch processes words in order and prints the summary. Failed words
// are reported in the summary, not returned.
func (p *Processor) Batch(ctx context.Context, words []string) error {
	if len(words) == 0 {
		p.printer.Info("No words to process")
		return nil
	}

	slog.Info("processing batch", slog.Int("words", len(words)), slog.String("deck", p.settings.Deck))
	p.printer.Info("Processing %d words...", len(words))
	p.printer.Summary(p.generator.GenerateBatch(ctx, words, p.options()))
	return nil
}

// FromFile processes the words listed in a file
func (p *Processor) FromFile(ctx context.Context, path string) error {
	words, err := batch.ReadWordFile(path)
	if err != nil {
		return err
	}
	return p.Batch(ctx, words)
}

// Interactive prompts for words until quit, exit or end of input
func (p *Processor) Interactive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	var entries []card.BatchEntry

	p.printer.Info("Interactive mode. Type 'quit' or 'exit' to stop.")
	for ctx.Err() == nil {
		fmt.Fprint(p.out, "\nEnter a word: ")
		if !scanner.Scan() {
			break
		}

		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			p.printer.Info("Please enter a valid word")
			continue
		}
		if lower := strings.ToLower(word); lower == "quit" || lower == "exit" {
			break
		}

		opts := p.options()
		if opts.Images {
			opts.Images = p.confirm(scanner, "Include images for this word? [Y/n]: ", true)
		}

		res, err := p.generator.Generate(ctx, word, opts)
		entries = append(entries, card.BatchEntry{Word: word, NoteID: res.NoteID, Updated: res.Updated, Err: err})

		if !p.confirm(scanner, "Add another word? [Y/n]: ", false) {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("reading input failed", slog.Any("error", err))
	}
	if len(entries) > 0 {
		p.printer.Summary(entries)
	}
	return nil
}

// confirm asks a yes/no question; an empty answer means yes and end of
// input returns onEOF
func (p *Processor) confirm(scanner *bufio.Scanner, prompt string, onEOF bool) bool {
	fmt.Fprint(p.out, prompt)
	if !scanner.Scan() {
		return onEOF
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	default:
		return true
	}
}

// SyncModel creates the configured note type or refreshes its templates
// and styling
func (p *Processor) SyncModel(ctx context.Context) error {
	result, err := notemodel.Sync(ctx, p.bridge, notemodel.Default(p.settings.Model))
	if err != nil {
		return err
	}

	if result.Created {
		p.printer.Info("Created note type %q", p.settings.Model)
	} else {
		p.printer.Info("Updated templates and styling of note type %q", p.settings.Model)
	}
	if len(result.MissingFields) > 0 {
		p.printer.Info("Fields missing from the installed note type, add them in Anki: %s",
			strings.Join(result.MissingFields, ", "))
	}
	return nil
}

// ListModels prints the note types and decks, marking the configured ones
func (p *Processor) ListModels(ctx context.Context) error {
	models, err := p.bridge.ModelNames(ctx)
	if err != nil {
		return err
	}
	decks, err := p.bridge.DeckNames(ctx)
	if err != nil {
		return err
	}

	p.printer.Info("Note types:")
	p.list(models, p.settings.Model)
	if !slices.Contains(models, p.settings.Model) {
		p.printer.Info("Note type %q is not installed, run 'ankismart model sync'", p.settings.Model)
	}

	p.printer.Info("\nDecks:")
	p.list(decks, p.settings.Deck)
	return nil
}

func (p *Processor) list(names []string, current string) {
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		p.printer.Info("  %s %s", marker, name)
	}
}

// Close releases the bridge session
func (p *Processor) Close() {
	if p.bridge != nil {
		p.bridge.Close()
	}
}
