// Package card turns an analyzed word into a note in the flashcard
// application: dedup lookup, audio and image enrichment, field formatting
// and the final add or update.
package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/ankismart/internal"
	"codeberg.org/snonux/ankismart/internal/analysis"
	"codeberg.org/snonux/ankismart/internal/ankiconnect"
	"codeberg.org/snonux/ankismart/internal/audio"
)

// DefaultTag is applied to new notes when no tags are given
const DefaultTag = "ai-generated"

// State is a step of one generation attempt
type State int

const (
	StateAnalyzing State = iota
	StateDeduping
	StateSynthesizingAudio
	StateFetchingImages
	StateFormatting
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAnalyzing:
		return "analyzing"
	case StateDeduping:
		return "deduping"
	case StateSynthesizingAudio:
		return "synthesizing audio"
	case StateFetchingImages:
		return "fetching images"
	case StateFormatting:
		return "formatting"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Analyzer returns the word senses for a word
type Analyzer interface {
	Analyze(ctx context.Context, word string) ([]analysis.WordSense, error)
}

// Bridge is the subset of the AnkiConnect client used to write cards
type Bridge interface {
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]ankiconnect.NoteInfo, error)
	AddNote(ctx context.Context, deck, model string, fields map[string]string, tags []string) (int64, error)
	UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error
	UpdateNote(ctx context.Context, id int64, fields map[string]string, tags []string) error
	StoreMediaFile(ctx context.Context, filename string, data []byte) (string, error)
}

// Progress receives the user-facing progress of card generation
type Progress interface {
	Start(word string)
	Item(index, total int)
	Step(state State, message string)
	Warn(state State, message string)
	Finish(word string, res Result, err error)
}

// NopProgress discards all progress
type NopProgress struct{}

func (NopProgress) Start(string) {}
func (NopProgress) Item(int, int) {}
func (NopProgress) Step(State, string) {}
func (NopProgress) Warn(State, string) {}
func (NopProgress) Finish(string, Result, error) {}

// Options control one generation
type Options struct {
	Deck          string
	Model         string
	Tags          []string
	ForceNew      bool // Skip the dedup lookup and always create
	Images        bool
	UpdateTags    bool // Replace the tags of an updated note as well
	AudioVariants []AudioVariant
}

// Result is the outcome of a successful generation
type Result struct {
	NoteID  int64
	Updated bool
}

// Config wires the collaborators of a Generator. Synthesizer and Images
// are optional; without them the corresponding step is skipped.
type Config struct {
	Analyzer    Analyzer
	Bridge      Bridge
	Synthesizer audio.Synthesizer
	Images      ImageSource
	Progress    Progress
}

// Generator creates or updates one note per word
type Generator struct {
	analyzer Analyzer
	bridge   Bridge
	synth    audio.Synthesizer
	images   ImageSource
	progress Progress
}

// NewGenerator creates a card generator
func NewGenerator(cfg Config) *Generator {
	progress := cfg.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	return &Generator{
		analyzer: cfg.Analyzer,
		bridge:   cfg.Bridge,
		synth:    cfg.Synthesizer,
		images:   cfg.Images,
		progress: progress,
	}
}

// Generate runs one generation attempt for word
func (g *Generator) Generate(ctx context.Context, word string, opts Options) (Result, error) {
	g.progress.Start(word)
	res, err := g.generate(ctx, word, opts)
	if err != nil {
		slog.Error("card generation failed", slog.String("word", word), slog.String("error", err.Error()))
	}
	g.progress.Finish(word, res, err)
	return res, err
}

func (g *Generator) generate(ctx context.Context, word string, opts Options) (Result, error) {
	// ANALYZING
	g.progress.Step(StateAnalyzing, "generating card content with AI")
	sense, err := g.analyze(ctx, word)
	if err != nil {
		return Result{}, err
	}
	g.progress.Step(StateAnalyzing, fmt.Sprintf("%s (%s, %s)", sense.Word, sense.WordForm, sense.Frequency))

	// DEDUPING
	var existing int64
	if opts.ForceNew {
		g.progress.Step(StateDeduping, "skipped, forcing a new card")
	} else {
		existing = g.findExisting(ctx, opts.Deck, sense.Word, sense.WordForm)
		if existing != 0 {
			g.progress.Step(StateDeduping, fmt.Sprintf("will update existing card %d", existing))
		} else {
			g.progress.Step(StateDeduping, "no existing card found, will create new")
		}
	}

	fields := BuildFields(sense)

	// Fields of steps that do not run keep their stored value on update
	var untouched []string

	// SYNTHESIZING_AUDIO
	variants := opts.AudioVariants
	if variants == nil {
		variants = DefaultAudioVariants
	}
	if g.synth == nil {
		for _, v := range variants {
			untouched = append(untouched, v.Field)
		}
	} else {
		for _, v := range variants {
			e := g.synthesize(ctx, sense.Word, v)
			if e.Skipped {
				g.skip(StateSynthesizingAudio, sense.Word, e)
				continue
			}
			fields[v.Field] = e.Value
		}
	}

	// FETCHING_IMAGES
	if opts.Images && g.images != nil {
		var tags []string
		index := 0
		for _, d := range sense.Definitions {
			if !d.ImageFriendly {
				continue
			}
			e := g.fetchImage(ctx, ImageRequest{
				Word:       sense.Word,
				Definition: d.English,
				Hints:      sense.ImageKeywords,
				Index:      index,
			})
			index++
			if e.Skipped {
				g.skip(StateFetchingImages, sense.Word, e)
				continue
			}
			tags = append(tags, e.Value)
		}
		fields[FieldImages] = FormatImages(tags)
	} else {
		untouched = append(untouched, FieldImages)
	}

	// FORMATTING is done by BuildFields; WRITING follows
	g.progress.Step(StateFormatting, fmt.Sprintf("formatted %d fields", len(fields)))

	if existing != 0 {
		for _, f := range untouched {
			delete(fields, f)
		}
		return g.update(ctx, sense.Word, existing, fields, opts)
	}
	return g.add(ctx, sense.Word, fields, opts)
}

func (g *Generator) analyze(ctx context.Context, word string) (analysis.WordSense, error) {
	senses, err := g.analyzer.Analyze(ctx, word)
	var malformed *analysis.MalformedResponseError
	switch {
	case errors.Is(err, analysis.ErrEmptyResponse), errors.As(err, &malformed):
		return analysis.WordSense{}, &InvalidAnalysisError{Word: word, Err: err}
	case err != nil:
		return analysis.WordSense{}, fmt.Errorf("analyzing %q: %w", word, err)
	case len(senses) == 0:
		return analysis.WordSense{}, &InvalidAnalysisError{Word: word}
	}

	sense := senses[0]
	if sense.Word == "" {
		sense.Word = word
	}
	return sense, nil
}

// findExisting returns the id of the note for word with the same part of
// speech, or 0. Lookup failures count as no match.
func (g *Generator) findExisting(ctx context.Context, deck, word, wordForm string) int64 {
	ids, err := g.bridge.FindNotes(ctx, DedupQuery(deck, word))
	if err != nil {
		g.lookupFailed(word, err)
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	notes, err := g.bridge.NotesInfo(ctx, ids)
	if err != nil {
		g.lookupFailed(word, err)
		return 0
	}
	for _, n := range notes {
		if n.Field(FieldWordForm) == wordForm {
			return n.NoteID
		}
	}
	return 0
}

func (g *Generator) lookupFailed(word string, err error) {
	slog.Warn("existing note lookup failed", slog.String("word", word), slog.String("error", err.Error()))
	g.progress.Warn(StateDeduping, fmt.Sprintf("error searching for existing note: %v", err))
}

func (g *Generator) skip(state State, word string, e Enrichment) {
	slog.Warn("enrichment skipped", slog.String("word", word), slog.String("state", state.String()),
		slog.String("reason", e.Reason))
	g.progress.Warn(state, e.Reason)
}

func (g *Generator) storeMedia(ctx context.Context, word, kind, ext string, data []byte) (string, error) {
	return g.bridge.StoreMediaFile(ctx, internal.MediaFilename(word, kind, ext), data)
}

// userNotes returns the current User Notes of a note; errors read as empty
func (g *Generator) userNotes(ctx context.Context, id int64) string {
	notes, err := g.bridge.NotesInfo(ctx, []int64{id})
	if err != nil {
		slog.Warn("reading user notes failed", slog.Int64("note", id), slog.String("error", err.Error()))
		return ""
	}
	if len(notes) == 0 {
		return ""
	}
	return notes[0].Field(FieldUserNotes)
}

func (g *Generator) update(ctx context.Context, word string, id int64, fields map[string]string, opts Options) (Result, error) {
	g.progress.Step(StateWriting, fmt.Sprintf("updating existing card %d", id))

	if notes := g.userNotes(ctx, id); notes != "" {
		fields[FieldUserNotes] = notes
		g.progress.Step(StateWriting, fmt.Sprintf("preserved User Notes (%d chars)", len(notes)))
	} else {
		delete(fields, FieldUserNotes)
	}

	var err error
	if opts.UpdateTags {
		err = g.bridge.UpdateNote(ctx, id, fields, tagsOrDefault(opts.Tags))
	} else {
		err = g.bridge.UpdateNoteFields(ctx, id, fields)
	}
	if err != nil {
		return Result{}, &CardWriteError{Op: "update", Word: word, Err: err}
	}
	return Result{NoteID: id, Updated: true}, nil
}

func (g *Generator) add(ctx context.Context, word string, fields map[string]string, opts Options) (Result, error) {
	g.progress.Step(StateWriting, "adding new card")

	id, err := g.bridge.AddNote(ctx, opts.Deck, opts.Model, fields, tagsOrDefault(opts.Tags))
	if err != nil {
		return Result{}, &CardWriteError{Op: "add", Word: word, Err: err}
	}
	return Result{NoteID: id}, nil
}

func tagsOrDefault(tags []string) []string {
	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return tags
}
