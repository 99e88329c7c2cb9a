package analysis

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runJSON = `[
  {
    "word": "run",
    "syllables": "run",
    "us_pron": "/rʌn/",
    "uk_pron": "/rʌn/",
    "word_form": "vi.",
    "frequency": "A1",
    "definitions": [
      [true, "to move fast on foot", "跑"],
      [false, "to manage a business", "经营"]
    ],
    "synonyms": ["sprint", "jog"],
    "notes": [],
    "examples": {
      "run": [["I **run** every morning.", "我每天早上跑步。"]],
      "run a business": [["She **runs a business** in town.", "她在镇上经营一家公司。"]],
      "a run": [["He went for **a run**.", "他去跑步了。"]]
    },
    "image_keywords": ["running person"]
  }
]`

type fakeText struct {
	text   string
	err    error
	prompt string
}

func (f *fakeText) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type fakeImages struct {
	data []byte
	err  error
}

func (f *fakeImages) GenerateImage(context.Context, string, string) ([]byte, error) {
	return f.data, f.err
}

func TestParse(t *testing.T) {
	senses, err := Parse("run", runJSON)
	require.NoError(t, err)
	require.Len(t, senses, 1)

	s := senses[0]
	assert.Equal(t, "run", s.Word)
	assert.Equal(t, "vi.", s.WordForm)
	assert.Equal(t, "A1", s.Frequency)
	require.Len(t, s.Definitions, 2)
	assert.Equal(t, Definition{ImageFriendly: true, English: "to move fast on foot", Translation: "跑"}, s.Definitions[0])
	assert.False(t, s.Definitions[1].ImageFriendly)
	assert.Equal(t, []string{"running person"}, s.ImageKeywords)

	// Example groups keep the order of the JSON object
	require.Len(t, s.Examples, 3)
	assert.Equal(t, "run", s.Examples[0].Phrase)
	assert.Equal(t, "run a business", s.Examples[1].Phrase)
	assert.Equal(t, "a run", s.Examples[2].Phrase)
	assert.Equal(t, "他去跑步了。", s.Examples[2].Pairs[0].Translation)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("run", "   \n")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParse_Malformed(t *testing.T) {
	valid := strings.TrimSpace(runJSON)

	tests := []struct {
		name string
		text string
	}{
		{"not json", "the word run means"},
		{"markdown fence", "```json\n" + valid + "\n```"},
		{"object top level", `{"word": "run"}`},
		{"truncated", valid[:len(valid)/2]},
		{"trailing data", valid + " []"},
		{"missing key", strings.Replace(valid, `"synonyms": ["sprint", "jog"],`, "", 1)},
		{"bad frequency", strings.Replace(valid, `"A1"`, `"D4"`, 1)},
		{"no definitions", strings.Replace(strings.Replace(valid,
			`[true, "to move fast on foot", "跑"],`, "", 1),
			`[false, "to manage a business", "经营"]`, "", 1)},
		{"string flag", strings.Replace(valid, `[true,`, `["true",`, 1)},
		{"null flag", strings.Replace(valid, `[true,`, `[null,`, 1)},
		{"two element definition", strings.Replace(valid, `[true, "to move fast on foot", "跑"]`, `["to move fast on foot", "跑"]`, 1)},
		{"bad example pair", strings.Replace(valid, `["He went for **a run**.", "他去跑步了。"]`, `["He went for **a run**."]`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("run", tt.text)

			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "run", malformed.Word)
		})
	}
}

func TestParse_EmptyArray(t *testing.T) {
	senses, err := Parse("run", "[]")
	require.NoError(t, err)
	assert.Empty(t, senses)
}

func TestClient_Analyze(t *testing.T) {
	text := &fakeText{text: runJSON}
	client := NewClient(text, nil, "German", 0)

	senses, err := client.Analyze(context.Background(), "run")
	require.NoError(t, err)
	assert.Len(t, senses, 1)
	assert.Contains(t, text.prompt, `"run"`)
	assert.Contains(t, text.prompt, "German")
	assert.Contains(t, text.prompt, "NO MARKDOWN")
}

func TestClient_AnalyzeTransportError(t *testing.T) {
	transport := errors.New("connection reset")
	client := NewClient(&fakeText{err: transport}, nil, "", 0)

	_, err := client.Analyze(context.Background(), "run")
	assert.ErrorIs(t, err, transport)

	var malformed *MalformedResponseError
	assert.False(t, errors.As(err, &malformed))
}

func TestClient_AnalyzeEmpty(t *testing.T) {
	client := NewClient(&fakeText{text: ""}, nil, "", 0)

	_, err := client.Analyze(context.Background(), "run")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClient_GenerateWordImage(t *testing.T) {
	client := NewClient(&fakeText{}, &fakeImages{data: pngBytes(t, 200, 100)}, "", 64)
	require.True(t, client.CanGenerateImages())

	data, err := client.GenerateWordImage(context.Background(), "run", "to move fast on foot")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestClient_GenerateWordImageNoImage(t *testing.T) {
	genErr := &ImageGenerationError{Word: "run", FinishReason: "SAFETY", BlockReason: "OTHER"}
	client := NewClient(&fakeText{}, &fakeImages{err: genErr}, "", 0)

	_, err := client.GenerateWordImage(context.Background(), "run", "x")

	var target *ImageGenerationError
	require.ErrorAs(t, err, &target)
	assert.Contains(t, err.Error(), "SAFETY")
	assert.Contains(t, err.Error(), "OTHER")
}

func TestClient_GenerateWordImageWithoutModel(t *testing.T) {
	client := NewClient(&fakeText{}, nil, "", 0)
	assert.False(t, client.CanGenerateImages())

	_, err := client.GenerateWordImage(context.Background(), "run", "x")
	assert.Error(t, err)
}

func TestNew_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Provider: "gemini"})
	assert.ErrorContains(t, err, "GOOGLE_AI_API_KEY")

	_, err = New(ctx, Config{Provider: "openai"})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = New(ctx, Config{Provider: "claude"})
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	_, err = New(ctx, Config{Provider: "llama"})
	assert.ErrorContains(t, err, "unsupported analysis provider")

	client, err := New(ctx, Config{Provider: "claude", AnthropicAPIKey: "test"})
	require.NoError(t, err)
	assert.False(t, client.CanGenerateImages())
}
