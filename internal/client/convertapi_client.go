package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/tunepull/api/internal/config"
)

// Converter defines the interface for the third-party conversion service
type Converter interface {
	Convert(ctx context.Context, videoID string) (*ConvertResult, error)
	Download(ctx context.Context, fileURL string) (io.ReadCloser, error)
	IsConfigured() bool
}

// ConvertAPIClient implements Converter against a hosted YouTube-to-MP3
// conversion API. The service does the extraction and transcoding remotely
// and hands back a short-lived link to the produced file.
type ConvertAPIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// ConvertResult is the conversion service's response. The service reports
// failure in-band: a "fail"/"error" status or an explicit error message with
// a 200 status code.
type ConvertResult struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Error  string `json:"error,omitempty"`
	Link   string `json:"link"`
	Title  string `json:"title"`
}

// Failed reports whether the service signalled an in-band failure.
func (r *ConvertResult) Failed() bool {
	return r.Error != "" || r.Status == "fail" || r.Status == "error" || r.Link == ""
}

// Reason returns the service's failure diagnostic.
func (r *ConvertResult) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Msg != "" {
		return r.Msg
	}
	if r.Link == "" {
		return "conversion API returned no result link"
	}
	return "conversion API reported status " + r.Status
}

// NewConvertAPIClient creates a new conversion API client
func NewConvertAPIClient(cfg *config.ConvertAPIConfig) *ConvertAPIClient {
	return &ConvertAPIClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Convert asks the service to produce an MP3 for the given video ID.
func (c *ConvertAPIClient) Convert(ctx context.Context, videoID string) (*ConvertResult, error) {
	endpoint := fmt.Sprintf("%s/dl?id=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	log.Printf("[Convert API] → GET %s", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Convert API] ✗ request failed: %v", err)
		return nil, fmt.Errorf("conversion API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion API response: %w", err)
	}

	log.Printf("[Convert API] ← %d (%d bytes)", resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("conversion API error (status %d)", resp.StatusCode)
	}

	var result ConvertResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversion API response: %w", err)
	}
	return &result, nil
}

// Download fetches the produced file. The caller must close the reader.
func (c *ConvertAPIClient) Download(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download converted file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("converted file fetch returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *ConvertAPIClient) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}
