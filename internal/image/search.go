// Package image finds, downloads, generates and resizes pictures for words.
package image

import (
	"context"
	"fmt"
	"strconv"
)

// MaxResultsPerCall is the most results a single search returns
const MaxResultsPerCall = 10

// SearchResult represents a single image search result
type SearchResult struct {
	URL          string // Direct URL to the image
	ThumbnailURL string // URL to thumbnail version
	Title        string
	Width        int
	Height       int
	ContextLink  string // Page the image was found on
	MimeType     string
	Source       string // Search provider, e.g. "google", "pixabay"
}

// SearchOptions configures the image search
type SearchOptions struct {
	Query      string
	Count      int    // Capped at MaxResultsPerCall
	Size       string // icon, small, medium, large, xlarge, xxlarge, huge
	Type       string // clipart, face, lineart, stock, photo, animated; empty means any
	SafeSearch bool
}

// DefaultSearchOptions returns sensible defaults for word picture searches
func DefaultSearchOptions(query string) SearchOptions {
	return SearchOptions{
		Query:      query,
		Count:      5,
		Size:       "medium",
		SafeSearch: true,
	}
}

func (o SearchOptions) count() int {
	switch {
	case o.Count <= 0:
		return 1
	case o.Count > MaxResultsPerCall:
		return MaxResultsPerCall
	default:
		return o.Count
	}
}

// Searcher defines the interface for image search providers
type Searcher interface {
	Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error)
	Name() string
}

// SearchError represents an error from an image search provider
type SearchError struct {
	Provider string
	Code     string
	Message  string
}

func (e *SearchError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
	}
	return e.Provider + ": " + e.Message
}

// RateLimitError indicates that the API rate limit has been exceeded
type RateLimitError struct {
	Provider   string
	RetryAfter int // Seconds to wait before retry
}

func (e *RateLimitError) Error() string {
	return e.Provider + ": rate limit exceeded, retry after " + strconv.Itoa(e.RetryAfter) + "s"
}
