package strategy

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tunepull/api/internal/client"
	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/storage"
)

// RemoteAPIStrategy delegates the whole extraction and transcode to a hosted
// conversion service, then pulls the produced file into the output directory.
type RemoteAPIStrategy struct {
	api   client.Converter
	store *storage.Store
}

// NewRemoteAPIStrategy creates the remote conversion API strategy
func NewRemoteAPIStrategy(api client.Converter, store *storage.Store) *RemoteAPIStrategy {
	return &RemoteAPIStrategy{api: api, store: store}
}

func (s *RemoteAPIStrategy) Kind() model.StrategyKind {
	return model.StrategyRemoteAPI
}

// IsConfigured reports whether the underlying API client has credentials.
// The orchestrator leaves this strategy out of the chain when it does not.
func (s *RemoteAPIStrategy) IsConfigured() bool {
	return s.api.IsConfigured()
}

func (s *RemoteAPIStrategy) Execute(ctx context.Context, job *model.ConversionJob) (*Result, error) {
	videoID := VideoIDFromURL(job.SourceURL)
	if videoID == "" {
		return nil, fmt.Errorf("could not extract video ID from URL")
	}

	result, err := s.api.Convert(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, fmt.Errorf("conversion API: %s", result.Reason())
	}

	title := result.Title
	if title == "" {
		title = "audio"
	}
	filename := fmt.Sprintf("%s-%d.mp3", storage.SanitizeTitle(title), storage.Fingerprint(job.RequestedAt))
	path := s.store.Path(filename)

	body, err := s.api.Download(ctx, result.Link)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		s.store.Discard(path)
		return nil, fmt.Errorf("failed to save converted file: %w", err)
	}
	if err := out.Close(); err != nil {
		s.store.Discard(path)
		return nil, fmt.Errorf("failed to flush output file: %w", err)
	}

	return &Result{Path: path, Filename: filename, Title: title}, nil
}
