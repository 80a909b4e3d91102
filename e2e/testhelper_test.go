package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tunepull/api/internal/client"
	"github.com/tunepull/api/internal/handler"
	"github.com/tunepull/api/internal/middleware"
	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/service"
	"github.com/tunepull/api/internal/storage"
	"github.com/tunepull/api/internal/strategy"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *storage.Store
}

// stubStrategy lets tests script each acquisition strategy's behavior. When
// produce is set, the stub writes a real artifact into the store first.
type stubStrategy struct {
	kind    model.StrategyKind
	err     error
	produce string // filename to materialize on success
	title   string
	store   *storage.Store
}

func (s *stubStrategy) Kind() model.StrategyKind {
	return s.kind
}

func (s *stubStrategy) Execute(ctx context.Context, job *model.ConversionJob) (*strategy.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	path := s.store.Path(s.produce)
	if err := os.WriteFile(path, []byte("mp3 bytes"), 0o644); err != nil {
		return nil, err
	}
	return &strategy.Result{Path: path, Filename: s.produce, Title: s.title}, nil
}

// stubFetcher fakes the watch-page proxy's upstream.
type stubFetcher struct {
	html   string
	err    error
	lastID string
}

func (f *stubFetcher) FetchWatchPage(ctx context.Context, videoID string) (string, error) {
	f.lastID = videoID
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

var _ client.PageFetcher = (*stubFetcher)(nil)

// newStore creates a Store over a temp directory with a short delete grace
// so download tests can observe the deferred delete.
func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "downloads"), time.Hour, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// setupApp creates a Fiber app wired like main.go, but over the given store
// and scriptable strategies. Redis is optional: the rate limiter fails open
// when it is unreachable.
func setupApp(t *testing.T, store *storage.Store, chain []strategy.Strategy, stream strategy.Strategy, fetcher client.PageFetcher) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})
	t.Cleanup(func() { redisClient.Close() })

	validate := validator.New()

	convertService := service.NewConvertService(chain, stream)

	convertHandler := handler.NewConvertHandler(convertService, validate)
	fetchHandler := handler.NewFetchHandler(fetcher, validate)
	downloadHandler := handler.NewDownloadHandler(store)
	healthHandler := handler.NewHealthHandler(time.Now(), false)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New()

	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")
	// Very high limits so tests never get throttled
	api.Post("/convert", rateLimiter.ConvertLimit(10000), convertHandler.Convert)
	api.Post("/convert-from-stream", rateLimiter.ConvertLimit(10000), convertHandler.ConvertFromStream)
	api.Post("/fetch-youtube", rateLimiter.FetchLimit(10000), fetchHandler.FetchPage)
	api.Get("/download/:filename", downloadHandler.Download)

	return &testApp{app: app, store: store}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
