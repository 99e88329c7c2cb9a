package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultDownloadTimeout bounds one image download
	DefaultDownloadTimeout = 10 * time.Second

	// DefaultMaxSizeBytes is the largest image accepted
	DefaultMaxSizeBytes = 5 * 1024 * 1024
)

// Downloader fetches images over plain HTTP. Failures are logged and
// reported as nil data so callers can move on to the next candidate.
type Downloader struct {
	httpClient   *http.Client
	maxSizeBytes int64
}

// NewDownloader creates a downloader; zero values select the defaults
func NewDownloader(timeout time.Duration, maxSizeBytes int64) *Downloader {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Downloader{
		httpClient:   &http.Client{Timeout: timeout},
		maxSizeBytes: maxSizeBytes,
	}
}

// Download returns the image bytes, or nil when anything goes wrong
func (d *Downloader) Download(ctx context.Context, url string) []byte {
	data, err := d.fetch(ctx, url)
	if err != nil {
		slog.Warn("image download failed", slog.String("url", url), slog.String("error", err.Error()))
		return nil
	}

	slog.Debug("image downloaded", slog.String("url", url), slog.Int("bytes", len(data)))
	return data
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized images
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > d.maxSizeBytes {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", d.maxSizeBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return data, nil
}
