package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleSearcher searches images with the Google Custom Search JSON API
type GoogleSearcher struct {
	service  *customsearch.Service
	engineID string
}

// GoogleConfig holds the Custom Search settings
type GoogleConfig struct {
	APIKey   string
	EngineID string
	Endpoint string       // Overrides the API endpoint, used by tests
	Client   *http.Client // Optional HTTP client
}

// NewGoogleSearcher creates a Custom Search image searcher
func NewGoogleSearcher(ctx context.Context, cfg GoogleConfig) (*GoogleSearcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Google Custom Search API key not found. Set GOOGLE_CUSTOM_SEARCH_KEY environment variable")
	}
	if cfg.EngineID == "" {
		return nil, fmt.Errorf("search engine id not found. Set GOOGLE_SEARCH_ENGINE_ID environment variable")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Client != nil {
		opts = append(opts, option.WithHTTPClient(cfg.Client))
	}

	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	return &GoogleSearcher{service: service, engineID: cfg.EngineID}, nil
}

// Name returns the name of the search provider
func (g *GoogleSearcher) Name() string {
	return "google"
}

// Search runs one image search
func (g *GoogleSearcher) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	call := g.service.Cse.List().
		Context(ctx).
		Cx(g.engineID).
		Q(opts.Query).
		SearchType("image").
		Num(int64(opts.count()))

	if opts.Size != "" {
		call = call.ImgSize(strings.ToUpper(opts.Size))
	}
	if opts.Type != "" {
		call = call.ImgType(opts.Type)
	}
	if opts.SafeSearch {
		call = call.Safe("active")
	} else {
		call = call.Safe("off")
	}

	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code == http.StatusTooManyRequests {
				return nil, &RateLimitError{Provider: g.Name(), RetryAfter: 60}
			}
			return nil, &SearchError{Provider: g.Name(), Code: fmt.Sprintf("%d", apiErr.Code), Message: apiErr.Message}
		}
		return nil, fmt.Errorf("google image search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		result := SearchResult{
			URL:      item.Link,
			Title:    item.Title,
			MimeType: item.Mime,
			Source:   g.Name(),
		}
		if item.Image != nil {
			result.ThumbnailURL = item.Image.ThumbnailLink
			result.ContextLink = item.Image.ContextLink
			result.Width = int(item.Image.Width)
			result.Height = int(item.Image.Height)
		}
		results = append(results, result)
	}

	slog.Debug("image search", slog.String("provider", g.Name()),
		slog.String("query", opts.Query), slog.Int("results", len(results)))
	return results, nil
}
