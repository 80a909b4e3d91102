package strategy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/storage"
)

// Transcoding is chattier than extraction, so the cap is larger.
const transcodeOutputCap = 20 << 20

// StreamTranscodeStrategy feeds a caller-supplied direct media URL to ffmpeg.
// Used by the browser-assisted path: the client already extracted the stream
// URL, the server only transcodes. A hard wall-clock timeout bounds the
// subprocess; on any failure the partial output is discarded so a truncated
// mp3 never survives to be served.
type StreamTranscodeStrategy struct {
	binPath string
	timeout time.Duration
	runner  CommandRunner
	store   *storage.Store
}

// StreamTranscodeOption is a functional option for configuring StreamTranscodeStrategy
type StreamTranscodeOption func(*StreamTranscodeStrategy)

// WithTranscodeRunner sets a custom command runner (for testing)
func WithTranscodeRunner(runner CommandRunner) StreamTranscodeOption {
	return func(s *StreamTranscodeStrategy) {
		s.runner = runner
	}
}

// NewStreamTranscodeStrategy creates the ffmpeg stream-to-file strategy
func NewStreamTranscodeStrategy(binPath string, timeout time.Duration, store *storage.Store, opts ...StreamTranscodeOption) *StreamTranscodeStrategy {
	s := &StreamTranscodeStrategy{
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

func (s *StreamTranscodeStrategy) Kind() model.StrategyKind {
	return model.StrategyStreamTranscode
}

func (s *StreamTranscodeStrategy) Execute(ctx context.Context, job *model.ConversionJob) (*Result, error) {
	if job.StreamURL == "" {
		return nil, fmt.Errorf("no stream URL supplied")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	title := storage.SanitizeTitle(job.Title)
	filename := fmt.Sprintf("%s-%d.mp3", title, storage.Fingerprint(job.RequestedAt))
	outputPath := s.store.Path(filename)

	args := []string{
		"-y",
		"-loglevel", "error",
		"-nostdin",
		"-i", job.StreamURL,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-b:a", "128k",
		outputPath,
	}

	out, err := s.runner.Run(ctx, transcodeOutputCap, s.binPath, args...)
	if err != nil {
		s.store.Discard(outputPath)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("transcoding timed out after %s", s.timeout)
		}
		return nil, fmt.Errorf("transcoder failed: %s", shortDiagnostic(out.Stderr, err))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return nil, fmt.Errorf("MP3 file not found after transcoding")
	}

	return &Result{Path: outputPath, Filename: filename, Title: job.Title}, nil
}
