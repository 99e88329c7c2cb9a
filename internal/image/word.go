package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoImage is returned when no candidate picture could be fetched
var ErrNoImage = errors.New("no usable image found")

// blacklist holds title and page substrings that mark unhelpful results
var blacklist = []string{
	"tiktok", "youtube", "instagram", "facebook",
	"twitter", "reddit", "pinterest",
	"video", "deal", "rooftop", "restaurant",
	"journal", "article", "paper", "research",
	"screenshot", "app", "download", "template",
	"poster", "flyer", "card design", "typography",
	"dictionary", "vocabulary",
}

// queryStep is one stage of the search cascade
type queryStep struct {
	format string // %s is the search term
	kind   string
}

var cascade = []queryStep{
	{"%s icon clipart -text -definition -dictionary", "clipart"},
	{"%s illustration symbol -text -typography", "clipart"},
	{"%s icon vector -word -dictionary", ""},
}

// WordSearch finds simple pictures that illustrate a word
type WordSearch struct {
	searcher   Searcher
	downloader *Downloader
	size       string
	imageSize  int
}

// NewWordSearch creates a word picture finder. imageSize is the edge of
// the square pictures FetchImage returns; 0 keeps the downloaded image.
func NewWordSearch(searcher Searcher, downloader *Downloader, imageSize int) *WordSearch {
	if downloader == nil {
		downloader = NewDownloader(0, 0)
	}
	return &WordSearch{
		searcher:   searcher,
		downloader: downloader,
		size:       "small",
		imageSize:  imageSize,
	}
}

// SearchTerm picks what to search for: the first keyword hint, else the
// first word of the phrase
func SearchTerm(word string, hints []string) string {
	for _, h := range hints {
		if h = strings.TrimSpace(h); h != "" {
			return h
		}
	}
	fields := strings.Fields(word)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Find returns up to n relevant results, running the clipart, illustration
// and icon queries until enough are collected
func (w *WordSearch) Find(ctx context.Context, word string, hints []string, n int) ([]SearchResult, error) {
	term := SearchTerm(word, hints)
	if term == "" {
		return nil, fmt.Errorf("nothing to search for in %q", word)
	}
	if n <= 0 {
		n = 1
	}

	var (
		found   []SearchResult
		seen    = make(map[string]bool)
		lastErr error
	)
	for _, step := range cascade {
		if len(found) >= n {
			break
		}

		results, err := w.searcher.Search(ctx, SearchOptions{
			Query:      fmt.Sprintf(step.format, term),
			Count:      (n - len(found)) * 3,
			Size:       w.size,
			Type:       step.kind,
			SafeSearch: true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("image search step failed", slog.String("term", term), slog.String("error", err.Error()))
			lastErr = err
			continue
		}

		for _, r := range results {
			if len(found) >= n {
				break
			}
			if r.URL == "" || seen[r.URL] || !IsRelevant(term, r) {
				continue
			}
			seen[r.URL] = true
			found = append(found, r)
		}
	}

	if len(found) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return found, nil
}

// IsRelevant filters out dictionary pages, social media and other results
// that rarely show the thing itself
func IsRelevant(term string, r SearchResult) bool {
	title := strings.ToLower(r.Title)
	page := strings.ToLower(r.ContextLink)
	term = strings.ToLower(term)

	suspicious := []string{
		term + " definition",
		term + " meaning",
		term + " word",
		"define " + term,
		"what is " + term,
	}
	suspicious = append(suspicious, blacklist...)

	for _, s := range suspicious {
		// "apple" must not be rejected for containing "app"
		if strings.Contains(term, s) {
			continue
		}
		if strings.Contains(title, s) || strings.Contains(page, s) {
			return false
		}
	}
	return true
}

// FetchImage returns the picture for the index-th image-friendly sense of
// word. Candidates that fail to download or decode are skipped.
func (w *WordSearch) FetchImage(ctx context.Context, word string, hints []string, index int) ([]byte, error) {
	if index < 0 {
		index = 0
	}

	candidates, err := w.Find(ctx, word, hints, index+3)
	if err != nil {
		return nil, err
	}
	if index < len(candidates) {
		rotated := make([]SearchResult, 0, len(candidates))
		rotated = append(rotated, candidates[index:]...)
		candidates = append(rotated, candidates[:index]...)
	}

	for _, c := range candidates {
		data := w.downloader.Download(ctx, c.URL)
		if data == nil {
			continue
		}
		if w.imageSize <= 0 {
			return data, nil
		}

		squared, err := Square(data, w.imageSize)
		if err != nil {
			slog.Warn("skipping undecodable image", slog.String("url", c.URL), slog.String("error", err.Error()))
			continue
		}
		return squared, nil
	}
	return nil, fmt.Errorf("%w for %q", ErrNoImage, word)
}
