package e2e

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/tunepull/api/internal/strategy"
)

// blockedRunner simulates a transcoder that never finishes: it writes a
// partial file, then hangs until the deadline kills it.
type blockedRunner struct{}

func (r *blockedRunner) Run(ctx context.Context, maxOutput int64, name string, args ...string) (strategy.CommandOutput, error) {
	out := args[len(args)-1]
	_ = os.WriteFile(out, []byte("truncated"), 0o644)
	<-ctx.Done()
	return strategy.CommandOutput{}, errors.New("signal: killed")
}

func TestConvertFromStream_MissingFields(t *testing.T) {
	ta := setupApp(t, newStore(t), nil, nil, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/convert-from-stream", `{"streamUrl":"https://cdn.example/stream"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
	body := parseJSON(t, resp)
	if body["error"] == nil || body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestConvertFromStream_TranscoderTimeout(t *testing.T) {
	store := newStore(t)
	stream := strategy.NewStreamTranscodeStrategy(
		"ffmpeg",
		20*time.Millisecond,
		store,
		strategy.WithTranscodeRunner(&blockedRunner{}),
	)
	ta := setupApp(t, store, nil, stream, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/convert-from-stream",
		`{"streamUrl":"https://cdn.example/stream","title":"Test","videoId":"xyz"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusInternalServerError)
	body := parseJSON(t, resp)
	if body["error"] == nil {
		t.Fatal("expected an error message")
	}

	// No residual output file may survive the kill.
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty output directory, found %d entries", len(entries))
	}
}

func TestConvertFromStream_Success(t *testing.T) {
	store := newStore(t)
	stream := &stubStrategy{
		kind:    "streamTranscode",
		produce: "Test-1700000000000.mp3",
		title:   "Test",
		store:   store,
	}
	ta := setupApp(t, store, nil, stream, &stubFetcher{})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/convert-from-stream",
		`{"streamUrl":"https://cdn.example/stream","title":"Test","videoId":"xyz"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	if body["method"] != "streamTranscode" {
		t.Errorf("expected method streamTranscode, got %v", body["method"])
	}
	if body["filename"] != "Test-1700000000000.mp3" {
		t.Errorf("unexpected filename: %v", body["filename"])
	}
}
