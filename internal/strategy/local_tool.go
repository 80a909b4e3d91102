package strategy

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/storage"
	"github.com/tunepull/api/pkg/fallback"
)

const (
	localToolOutputCap = 10 << 20 // cap on captured yt-dlp stdout/stderr

	toolUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// playerClients are the impersonation configurations tried in fixed order.
// The target site's anti-automation defenses shift over time; a client that
// worked yesterday may be blocked today, so each request walks this list
// until one gets through.
var playerClients = []string{"default", "android", "ios"}

// LocalToolStrategy shells out to yt-dlp, which downloads and transcodes in
// one shot. Sub-attempts run through the same fallback combinator the outer
// orchestrator uses.
type LocalToolStrategy struct {
	binPath string
	timeout time.Duration
	runner  CommandRunner
	store   *storage.Store
}

// LocalToolOption is a functional option for configuring LocalToolStrategy
type LocalToolOption func(*LocalToolStrategy)

// WithLocalToolRunner sets a custom command runner (for testing)
func WithLocalToolRunner(runner CommandRunner) LocalToolOption {
	return func(s *LocalToolStrategy) {
		s.runner = runner
	}
}

// NewLocalToolStrategy creates the yt-dlp subprocess strategy
func NewLocalToolStrategy(binPath string, timeout time.Duration, store *storage.Store, opts ...LocalToolOption) *LocalToolStrategy {
	s := &LocalToolStrategy{
		binPath: binPath,
		timeout: timeout,
		runner:  &ExecCommandRunner{},
		store:   store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalToolStrategy) Kind() model.StrategyKind {
	return model.StrategyLocalTool
}

func (s *LocalToolStrategy) Execute(ctx context.Context, job *model.ConversionJob) (*Result, error) {
	ops := make([]fallback.Op[*Result], 0, len(playerClients))
	for _, pc := range playerClients {
		playerClient := pc
		ops = append(ops, fallback.Op[*Result]{
			Name: string(model.StrategyLocalTool) + "/" + playerClient,
			Run: func(ctx context.Context) (*Result, error) {
				return s.attempt(ctx, job, playerClient)
			},
		})
	}

	result, _, _, err := fallback.First(ctx, ops)
	return result, err
}

// attempt runs one player-client configuration to completion.
func (s *LocalToolStrategy) attempt(ctx context.Context, job *model.ConversionJob, playerClient string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fp := storage.Fingerprint(job.RequestedAt)
	prefix := fmt.Sprintf("video-%d", fp)
	template := s.store.Path(prefix + ".%(title)s.%(ext)s")

	args := []string{
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "128K",
		"--extractor-args", "youtube:player_client=" + playerClient,
		"--user-agent", toolUserAgent,
		"--no-warnings",
		"-o", template,
		job.SourceURL,
	}

	out, err := s.runner.Run(ctx, localToolOutputCap, s.binPath, args...)
	if err != nil {
		return nil, fmt.Errorf("downloader failed (%s client): %s", playerClient, shortDiagnostic(out.Stderr, err))
	}

	// The tool picks the final extension itself; locate the produced mp3 by
	// fingerprint prefix.
	filename, err := s.findOutput(prefix)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:     s.store.Path(filename),
		Filename: filename,
		Title:    titleFromFilename(filename, prefix),
	}, nil
}

func (s *LocalToolStrategy) findOutput(prefix string) (string, error) {
	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return "", fmt.Errorf("failed to scan output directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".mp3") {
			return name, nil
		}
	}
	return "", fmt.Errorf("MP3 file not found after conversion")
}

// titleFromFilename recovers the display title the tool embedded between the
// fingerprint prefix and the extension. Falls back to a fixed token when the
// segment is empty.
func titleFromFilename(filename, prefix string) string {
	title := strings.TrimPrefix(filename, prefix)
	title = strings.TrimSuffix(title, ".mp3")
	title = strings.Trim(title, ".")
	if title == "" {
		return "video"
	}
	return title
}

// shortDiagnostic keeps error strings human-sized: the last non-empty stderr
// line if there is one, the exec error otherwise.
func shortDiagnostic(stderr string, err error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return err.Error()
}
