package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// watch pages run a few hundred KB; anything past this is not the page we want
const maxWatchPageBytes = 10 << 20

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PageFetcher defines the interface for the watch-page proxy
type PageFetcher interface {
	FetchWatchPage(ctx context.Context, videoID string) (string, error)
}

// YouTubeClient fetches raw watch-page markup on behalf of the browser
// front-end, which cannot do the request itself because of cross-origin
// restrictions. The server never parses the page; the browser does.
type YouTubeClient struct {
	httpClient *http.Client
}

// NewYouTubeClient creates a new watch-page fetch client
func NewYouTubeClient() *YouTubeClient {
	return &YouTubeClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchWatchPage performs a single blocking GET of the watch page for the
// given video ID and returns the raw HTML.
func (c *YouTubeClient) FetchWatchPage(ctx context.Context, videoID string) (string, error) {
	pageURL := "https://www.youtube.com/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	log.Printf("[YouTube] → GET %s", pageURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read watch page: %w", err)
	}

	log.Printf("[YouTube] ← %d (%d bytes)", resp.StatusCode, len(body))
	return string(body), nil
}
