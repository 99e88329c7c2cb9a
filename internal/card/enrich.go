package card

import (
	"context"
	"fmt"

	"codeberg.org/snonux/ankismart/internal/audio"
)

// Enrichment is the outcome of one audio or image step. A skipped
// enrichment carries the reason and leaves its field blank.
type Enrichment struct {
	Value   string
	Skipped bool
	Reason  string
}

func enriched(value string) Enrichment {
	return Enrichment{Value: value}
}

func skipped(format string, args ...any) Enrichment {
	return Enrichment{Skipped: true, Reason: fmt.Sprintf(format, args...)}
}

// ImageRequest describes the picture wanted for one definition
type ImageRequest struct {
	Word       string
	Definition string
	Hints      []string
	Index      int // Position among the image-friendly definitions
}

// ImageSource produces image bytes for a definition
type ImageSource interface {
	Image(ctx context.Context, req ImageRequest) ([]byte, error)
}

// ImageGenerator draws a picture for a definition, e.g. the analysis
// client's Gemini image model or the DALL-E generator
type ImageGenerator interface {
	GenerateWordImage(ctx context.Context, word, definition string) ([]byte, error)
}

// ImageFetcher finds a picture through image search
type ImageFetcher interface {
	FetchImage(ctx context.Context, word string, hints []string, index int) ([]byte, error)
}

type generatedImages struct {
	gen ImageGenerator
}

// GeneratedImages uses an image generator as the image source
func GeneratedImages(gen ImageGenerator) ImageSource {
	return generatedImages{gen: gen}
}

func (g generatedImages) Image(ctx context.Context, req ImageRequest) ([]byte, error) {
	return g.gen.GenerateWordImage(ctx, req.Word, req.Definition)
}

type searchedImages struct {
	fetcher ImageFetcher
}

// SearchedImages uses image search as the image source
func SearchedImages(fetcher ImageFetcher) ImageSource {
	return searchedImages{fetcher: fetcher}
}

func (s searchedImages) Image(ctx context.Context, req ImageRequest) ([]byte, error) {
	return s.fetcher.FetchImage(ctx, req.Word, req.Hints, req.Index)
}

// synthesize records one pronunciation and returns its sound tag
func (g *Generator) synthesize(ctx context.Context, word string, v AudioVariant) Enrichment {
	data, voice, err := g.synth.Synthesize(ctx, word, v.LanguageCode, audio.RandomVoice())
	if err != nil {
		return skipped("%s audio: %v", v.Kind, err)
	}

	stored, err := g.storeMedia(ctx, word, v.Kind, "mp3", data)
	if err != nil {
		return skipped("%s audio: %v", v.Kind, err)
	}
	g.progress.Step(StateSynthesizingAudio, fmt.Sprintf("%s audio stored as %s (voice: %s)", v.Kind, stored, voice))
	return enriched(soundTag(stored))
}

// fetchImage stores the picture for one definition and returns its img tag
func (g *Generator) fetchImage(ctx context.Context, req ImageRequest) Enrichment {
	data, err := g.images.Image(ctx, req)
	if err != nil {
		return skipped("image %d: %v", req.Index+1, err)
	}
	if len(data) == 0 {
		return skipped("image %d: no data", req.Index+1)
	}

	stored, err := g.storeMedia(ctx, req.Word, fmt.Sprintf("image%d", req.Index+1), "jpg", data)
	if err != nil {
		return skipped("image %d: %v", req.Index+1, err)
	}
	g.progress.Step(StateFetchingImages, fmt.Sprintf("image %d stored as %s", req.Index+1, stored))
	return enriched(imageTag(stored))
}
