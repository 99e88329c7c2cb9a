package processor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/ankismart/internal/analysis"
	"codeberg.org/snonux/ankismart/internal/ankiconnect"
	"codeberg.org/snonux/ankismart/internal/card"
	"codeberg.org/snonux/ankismart/internal/cli"
	"codeberg.org/snonux/ankismart/internal/notemodel"
	"codeberg.org/snonux/ankismart/internal/testutil"
)

func testSettings() *cli.Settings {
	return &cli.Settings{
		AnkiURL:          "http://localhost:8765",
		Deck:             cli.DefaultDeck,
		Model:            cli.DefaultModel,
		AnalysisProvider: "gemini",
		AudioProvider:    "none",
		ImageSource:      "generate",
		ImageGenerator:   "gemini",
		ImageSize:        512,
	}
}

type fixture struct {
	proc     *Processor
	bridge   *testutil.MockBridge
	analyzer *testutil.MockAnalyzer
	images   *testutil.MockImageGenerator
	out      *bytes.Buffer
}

func newFixture(s *cli.Settings) *fixture {
	f := &fixture{
		bridge:   testutil.NewMockBridge(),
		analyzer: &testutil.MockAnalyzer{Errors: map[string]error{}},
		images:   &testutil.MockImageGenerator{},
		out:      &bytes.Buffer{},
	}
	f.proc = NewWithDeps(s, f.out, Deps{
		Analyzer:    f.analyzer,
		Bridge:      f.bridge,
		Synthesizer: &testutil.MockSynthesizer{},
		Images:      card.GeneratedImages(f.images),
	})
	return f
}

func TestGenerateCreatesNote(t *testing.T) {
	f := newFixture(testSettings())

	require.NoError(t, f.proc.Generate(context.Background(), "apple"))

	w, ok := f.bridge.LastWrite()
	require.True(t, ok)
	assert.Equal(t, "add", w.Op)
	assert.Equal(t, []string{card.DefaultTag}, w.Tags)
	assert.Contains(t, w.Fields[card.FieldUSAudio], "[sound:")
	assert.Equal(t, 2, strings.Count(w.Fields[card.FieldImages], "<img"))
	assert.Contains(t, f.out.String(), "Created!")
}

func TestGenerateUsesSettings(t *testing.T) {
	s := testSettings()
	s.Tags = []string{"vocab"}
	s.ImageSource = "none"
	s.UpdateTags = true
	f := newFixture(s)

	id := f.bridge.Seed(s.Deck, map[string]string{"Word": "apple", "Word Form": "n.", "User Notes": "mine"})
	require.NoError(t, f.proc.Generate(context.Background(), "apple"))

	w, ok := f.bridge.LastWrite()
	require.True(t, ok)
	assert.Equal(t, "updateNote", w.Op)
	assert.Equal(t, id, w.NoteID)
	assert.Equal(t, []string{"vocab"}, w.Tags)
	assert.Empty(t, f.images.Calls)
}

func TestGenerateForceNew(t *testing.T) {
	s := testSettings()
	s.ForceNew = true
	f := newFixture(s)
	f.bridge.Seed(s.Deck, map[string]string{"Word": "apple", "Word Form": "n."})

	require.NoError(t, f.proc.Generate(context.Background(), "apple"))

	w, _ := f.bridge.LastWrite()
	assert.Equal(t, "add", w.Op)
	for _, c := range f.bridge.Calls {
		assert.NotContains(t, c, "findNotes")
	}
}

func TestGenerateReturnsError(t *testing.T) {
	f := newFixture(testSettings())
	f.analyzer.Errors["apple"] = analysis.ErrEmptyResponse

	err := f.proc.Generate(context.Background(), "apple")
	var invalid *card.InvalidAnalysisError
	assert.ErrorAs(t, err, &invalid)
}

func TestBatchPrintsSummary(t *testing.T) {
	f := newFixture(testSettings())
	f.analyzer.Errors["broken"] = errors.New("model overloaded")

	require.NoError(t, f.proc.Batch(context.Background(), []string{"apple", "broken", "pear"}))

	out := f.out.String()
	assert.Contains(t, out, "Processing 3 words")
	assert.Contains(t, out, "Batch Summary")
	assert.Contains(t, out, "model overloaded")
	assert.Len(t, f.bridge.Writes, 2)
}

func TestBatchEmpty(t *testing.T) {
	f := newFixture(testSettings())
	require.NoError(t, f.proc.Batch(context.Background(), nil))
	assert.Contains(t, f.out.String(), "No words to process")
	assert.Empty(t, f.analyzer.Calls)
}

func TestFromFile(t *testing.T) {
	f := newFixture(testSettings())
	path := testutil.CreateWordFile(t, "# fruit", "apple", "", "pear")

	require.NoError(t, f.proc.FromFile(context.Background(), path))
	assert.Equal(t, []string{"apple", "pear"}, f.analyzer.Calls)

	assert.Error(t, f.proc.FromFile(context.Background(), path+".missing"))
}

func TestInteractive(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantWords  []string
		wantImages int
	}{
		{"quit", "quit\n", nil, 0},
		{"end of input", "", nil, 0},
		{"one word then stop", "apple\n\nn\n", []string{"apple"}, 2},
		{"skip images", "apple\nn\nn\n", []string{"apple"}, 0},
		{"two words", "apple\ny\ny\npear\nn\nn\n", []string{"apple", "pear"}, 2},
		{"blank line reprompts", "\n  \napple\ny\nno\n", []string{"apple"}, 2},
		{"exit after add another", "apple\n\n\nEXIT\n", []string{"apple"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(testSettings())

			require.NoError(t, f.proc.Interactive(context.Background(), strings.NewReader(tt.input)))
			assert.Equal(t, tt.wantWords, f.analyzer.Calls)
			assert.Len(t, f.images.Calls, tt.wantImages)
			if len(tt.wantWords) > 0 {
				assert.Contains(t, f.out.String(), "Batch Summary")
			} else {
				assert.NotContains(t, f.out.String(), "Batch Summary")
			}
		})
	}
}

func TestInteractiveEmptyWordMessage(t *testing.T) {
	f := newFixture(testSettings())
	require.NoError(t, f.proc.Interactive(context.Background(), strings.NewReader("\nquit\n")))
	assert.Contains(t, f.out.String(), "Please enter a valid word")
}

func TestInteractiveWithoutImagesDoesNotAsk(t *testing.T) {
	s := testSettings()
	s.ImageSource = "none"
	f := newFixture(s)

	require.NoError(t, f.proc.Interactive(context.Background(), strings.NewReader("apple\nn\n")))
	assert.Equal(t, []string{"apple"}, f.analyzer.Calls)
	assert.NotContains(t, f.out.String(), "Include images")
}

func TestSyncModel(t *testing.T) {
	f := newFixture(testSettings())

	require.NoError(t, f.proc.SyncModel(context.Background()))
	assert.Contains(t, f.out.String(), "Created note type")
	require.Contains(t, f.bridge.Models, cli.DefaultModel)

	// Drop one field from the installed model
	model := f.bridge.Models[cli.DefaultModel]
	model.Fields = model.Fields[:len(model.Fields)-1]

	f.out.Reset()
	require.NoError(t, f.proc.SyncModel(context.Background()))
	assert.Contains(t, f.out.String(), "Updated templates and styling")
	assert.Contains(t, f.out.String(), card.FieldUserNotes)
}

func TestSyncModelError(t *testing.T) {
	f := newFixture(testSettings())
	f.bridge.Errors["findModelsByName"] = &ankiconnect.BridgeError{Action: "findModelsByName", Message: "boom"}

	assert.Error(t, f.proc.SyncModel(context.Background()))
}

func TestListModels(t *testing.T) {
	f := newFixture(testSettings())
	f.bridge.Models["Basic"] = &ankiconnect.NoteModel{Name: "Basic"}
	f.bridge.Decks = []string{"Default", cli.DefaultDeck}

	require.NoError(t, f.proc.ListModels(context.Background()))
	out := f.out.String()
	assert.Contains(t, out, "  Basic")
	assert.Contains(t, out, "* "+cli.DefaultDeck)
	assert.Contains(t, out, "is not installed")

	_, err := notemodel.Sync(context.Background(), f.bridge, notemodel.Default(cli.DefaultModel))
	require.NoError(t, err)
	f.out.Reset()
	require.NoError(t, f.proc.ListModels(context.Background()))
	assert.Contains(t, f.out.String(), "* "+cli.DefaultModel)
	assert.NotContains(t, f.out.String(), "is not installed")
}

func TestClose(t *testing.T) {
	f := newFixture(testSettings())
	f.proc.Close()
	assert.True(t, f.bridge.Closed)
}

func TestNewWithOutputRequiresAnalysisKey(t *testing.T) {
	_, err := NewWithOutput(context.Background(), testSettings(), &bytes.Buffer{})
	assert.ErrorContains(t, err, "GOOGLE_AI_API_KEY")
}

func TestNewWithOutputWithoutOptionalKeys(t *testing.T) {
	s := testSettings()
	s.AnalysisProvider = "openai"
	s.OpenAIKey = "sk-test"
	s.AudioProvider = "google"

	p, err := NewWithOutput(context.Background(), s, &bytes.Buffer{})
	require.NoError(t, err)
	defer p.Close()

	// Without a Google key there are no Gemini images and no Google speech
	assert.False(t, p.images)
}

func TestNewSynthesizer(t *testing.T) {
	ctx := context.Background()

	s := testSettings()
	assert.Nil(t, newSynthesizer(ctx, s))

	s.AudioProvider = "openai"
	assert.Nil(t, newSynthesizer(ctx, s))

	s.OpenAIKey = "sk-test"
	s.OpenAITTSModel = "tts-1"
	synth := newSynthesizer(ctx, s)
	require.NotNil(t, synth)
	assert.Equal(t, "openai", synth.Name())
}

func TestImageSource(t *testing.T) {
	ctx := context.Background()

	s := testSettings()
	s.ImageSource = "none"
	src, err := imageSource(ctx, s, nil)
	assert.NoError(t, err)
	assert.Nil(t, src)

	s.ImageSource = "generate"
	_, err = imageSource(ctx, s, nil)
	assert.ErrorContains(t, err, "GOOGLE_AI_API_KEY")

	s.ImageGenerator = "openai"
	_, err = imageSource(ctx, s, nil)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
	s.OpenAIKey = "sk-test"
	src, err = imageSource(ctx, s, nil)
	assert.NoError(t, err)
	assert.NotNil(t, src)

	s.ImageSource = "search"
	s.ImageSearchProvider = "pixabay"
	_, err = imageSource(ctx, s, nil)
	assert.ErrorContains(t, err, "PIXABAY_API_KEY")
	s.PixabayKey = "px"
	src, err = imageSource(ctx, s, nil)
	assert.NoError(t, err)
	assert.NotNil(t, src)

	s.ImageSearchProvider = "google"
	_, err = imageSource(ctx, s, nil)
	assert.ErrorContains(t, err, "GOOGLE_CUSTOM_SEARCH_KEY")

	assert.Nil(t, newImageSource(ctx, s, nil))
}

func TestNewWritesToStdout(t *testing.T) {
	s := testSettings()
	s.AnalysisProvider = "claude"
	s.AnthropicKey = "sk-ant-test"

	out := testutil.CaptureOutput(t, func() {
		p, err := New(context.Background(), s)
		require.NoError(t, err)
		defer p.Close()
		require.NoError(t, p.Batch(context.Background(), nil))
	})
	assert.Contains(t, out, "No words to process")
}
