package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	pixabayAPIURL  = "https://pixabay.com/api/"
	pixabayTimeout = 30 * time.Second
)

// PixabayClient implements Searcher for the Pixabay API
type PixabayClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	rateLimit  *rateLimiter
}

// pixabayResponse represents the API response structure
type pixabayResponse struct {
	Total     int            `json:"total"`
	TotalHits int            `json:"totalHits"`
	Hits      []pixabayImage `json:"hits"`
}

// pixabayImage represents a single image in the response
type pixabayImage struct {
	ID              int    `json:"id"`
	PageURL         string `json:"pageURL"`
	Type            string `json:"type"`
	Tags            string `json:"tags"`
	PreviewURL      string `json:"previewURL"`
	WebformatURL    string `json:"webformatURL"`
	WebformatWidth  int    `json:"webformatWidth"`
	WebformatHeight int    `json:"webformatHeight"`
	User            string `json:"user"`
}

// rateLimiter allows at most requestsPerMinute requests in any minute
type rateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	requests          []time.Time
	now               func() time.Time
}

func newRateLimiter(rpm int) *rateLimiter {
	return &rateLimiter{
		requestsPerMinute: rpm,
		requests:          make([]time.Time, 0, rpm),
		now:               time.Now,
	}
}

func (rl *rateLimiter) wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Remove requests older than 1 minute
	cutoff := now.Add(-1 * time.Minute)
	i := 0
	for i < len(rl.requests) && rl.requests[i].Before(cutoff) {
		i++
	}
	rl.requests = rl.requests[i:]

	// If we're at the limit, wait
	if len(rl.requests) >= rl.requestsPerMinute {
		waitDuration := rl.requests[0].Add(1 * time.Minute).Sub(now)
		if waitDuration > 0 {
			timer := time.NewTimer(waitDuration)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
			now = rl.now()
		}
		rl.requests = rl.requests[1:]
	}

	rl.requests = append(rl.requests, now)
	return nil
}

// NewPixabayClient creates a new Pixabay API client
func NewPixabayClient(apiKey string) *PixabayClient {
	return &PixabayClient{
		apiKey:  apiKey,
		baseURL: pixabayAPIURL,
		httpClient: &http.Client{
			Timeout: pixabayTimeout,
		},
		rateLimit: newRateLimiter(100), // 100 requests per minute
	}
}

// Name returns the name of the search provider
func (p *PixabayClient) Name() string {
	return "pixabay"
}

// Search performs an image search on Pixabay
func (p *PixabayClient) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	if p.apiKey == "" {
		return nil, &SearchError{Provider: p.Name(), Code: "NO_API_KEY", Message: "Pixabay API key not found. Set PIXABAY_API_KEY environment variable"}
	}

	if err := p.rateLimit.wait(ctx); err != nil {
		return nil, err
	}

	// Pixabay requires at least 3 results per page
	perPage := opts.count()
	if perPage < 3 {
		perPage = 3
	}

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", opts.Query)
	params.Set("lang", "en")
	params.Set("image_type", pixabayImageType(opts.Type))
	params.Set("safesearch", fmt.Sprintf("%t", opts.SafeSearch))
	params.Set("per_page", fmt.Sprintf("%d", perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Provider: p.Name(), RetryAfter: 60}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &SearchError{
			Provider: p.Name(),
			Code:     fmt.Sprintf("%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var pixResp pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&pixResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(pixResp.Hits))
	for _, hit := range pixResp.Hits {
		results = append(results, SearchResult{
			URL:          hit.WebformatURL,
			ThumbnailURL: hit.PreviewURL,
			Title:        hit.Tags,
			Width:        hit.WebformatWidth,
			Height:       hit.WebformatHeight,
			ContextLink:  hit.PageURL,
			Source:       p.Name(),
		})
	}

	if len(results) > opts.count() {
		results = results[:opts.count()]
	}
	return results, nil
}

// pixabayImageType maps search types onto Pixabay's photo/illustration/vector
func pixabayImageType(t string) string {
	switch t {
	case "clipart", "lineart":
		return "illustration"
	case "photo", "stock", "face":
		return "photo"
	default:
		return "all"
	}
}
