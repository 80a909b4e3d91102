package e2e

import (
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDownload_ServesFileThenDeletes(t *testing.T) {
	store := newStore(t)
	path := store.Path("video-1700000000000.mp3")
	if err := os.WriteFile(path, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	ta := setupApp(t, store, nil, nil, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodGet, "/api/download/video-1700000000000.mp3", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	if body := readBody(t, resp); body != "mp3 bytes" {
		t.Errorf("unexpected body: %q", body)
	}

	// The deferred delete fires after the grace period.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected the artifact to be deleted after download")
}

func TestDownload_MissingFile(t *testing.T) {
	ta := setupApp(t, newStore(t), nil, nil, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodGet, "/api/download/gone.mp3", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
	body := parseJSON(t, resp)
	if body["error"] != "File not found" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestDownload_RejectsTraversal(t *testing.T) {
	ta := setupApp(t, newStore(t), nil, nil, &stubFetcher{})

	for _, path := range []string{
		"/api/download/..%2F..%2Fetc%2Fpasswd",
		"/api/download/..%5C..%5Cwindows",
		"/api/download/%2e%2e%2f%2e%2e%2fetc%2fpasswd",
	} {
		resp, err := doRequest(ta.app, http.MethodGet, path, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s: expected 404/400, got %d", path, resp.StatusCode)
		}
	}
}
