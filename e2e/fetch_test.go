package e2e

import (
	"errors"
	"net/http"
	"testing"
)

func TestFetchYouTube_InvalidVideoID(t *testing.T) {
	ta := setupApp(t, newStore(t), nil, nil, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/fetch-youtube", `{}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	if body := parseJSON(t, resp); body["error"] != "Video ID is required" {
		t.Errorf("unexpected error message: %v", body["error"])
	}

	for _, videoID := range []string{"has spaces", "way-too-long-for-a-video-id", "<script>"} {
		resp, err := doRequest(ta.app, http.MethodPost, "/api/fetch-youtube", `{"videoId": "`+videoID+`"}`)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusBadRequest)
		body := parseJSON(t, resp)
		if body["error"] != "Invalid video ID" {
			t.Errorf("videoId %q: unexpected error message: %v", videoID, body["error"])
		}
	}
}

func TestFetchYouTube_UpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	ta := setupApp(t, newStore(t), nil, nil, fetcher)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/fetch-youtube", `{"videoId": "dQw4w9WgXcQ"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadGateway)
	body := parseJSON(t, resp)
	if body["error"] != "Failed to fetch YouTube page" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestFetchYouTube_ReturnsHTML(t *testing.T) {
	fetcher := &stubFetcher{html: "<html>watch page</html>"}
	ta := setupApp(t, newStore(t), nil, nil, fetcher)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/fetch-youtube", `{"videoId": "dQw4w9WgXcQ"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	if body["html"] != "<html>watch page</html>" {
		t.Errorf("unexpected html payload: %v", body["html"])
	}
	if fetcher.lastID != "dQw4w9WgXcQ" {
		t.Errorf("fetcher called with %q", fetcher.lastID)
	}
}
