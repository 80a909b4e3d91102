package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/strategy"
	"github.com/tunepull/api/pkg/fallback"
)

// ErrUnsupportedURL marks a source URL outside the supported domains.
var ErrUnsupportedURL = errors.New("invalid YouTube URL")

var supportedDomains = []string{"youtube.com", "youtu.be"}

// ConvertService is the fallback orchestrator. In auto mode it walks the
// strategy chain in priority order, treating each strategy's failure as
// recoverable until the chain is exhausted; in stream mode it runs the
// transcode strategy once and surfaces its failure directly.
type ConvertService struct {
	chain  []strategy.Strategy
	stream strategy.Strategy
}

// NewConvertService creates the orchestrator. chain is the auto-mode
// priority order; stream handles the pre-extracted-stream mode.
func NewConvertService(chain []strategy.Strategy, stream strategy.Strategy) *ConvertService {
	return &ConvertService{chain: chain, stream: stream}
}

// Convert runs the auto-mode chain for a source URL. On total exhaustion the
// returned error carries the last strategy's diagnostic; earlier failures
// are logged as ordinary fallback noise.
func (s *ConvertService) Convert(ctx context.Context, sourceURL string) (*model.ConvertResponse, error) {
	if !isSupportedURL(sourceURL) {
		return nil, ErrUnsupportedURL
	}

	job := &model.ConversionJob{
		ID:          uuid.New().String(),
		SourceURL:   sourceURL,
		Mode:        model.ModeAuto,
		RequestedAt: time.Now(),
	}
	log.Printf("[JOB %s] Converting: %s", job.ID, sourceURL)

	ops := make([]fallback.Op[*strategy.Result], 0, len(s.chain))
	for _, st := range s.chain {
		st := st
		ops = append(ops, fallback.Op[*strategy.Result]{
			Name: string(st.Kind()),
			Run: func(ctx context.Context) (*strategy.Result, error) {
				return st.Execute(ctx, job)
			},
		})
	}

	result, winner, attempts, err := fallback.First(ctx, ops)
	logAttempts(job.ID, attempts)
	if err != nil {
		log.Printf("[JOB %s] All strategies exhausted: %v", job.ID, err)
		return nil, err
	}

	return s.respond(job, result, winner)
}

// ConvertFromStream runs the single stream-transcode strategy. No fallback:
// the caller already did client-side extraction work, and silently starting
// over server-side would be surprising and wasteful.
func (s *ConvertService) ConvertFromStream(ctx context.Context, req *model.ConvertFromStreamRequest) (*model.ConvertResponse, error) {
	job := &model.ConversionJob{
		ID:          uuid.New().String(),
		Mode:        model.ModeFromStream,
		RequestedAt: time.Now(),
		StreamURL:   req.StreamURL,
		Title:       req.Title,
		VideoID:     req.VideoID,
	}
	log.Printf("[JOB %s] Transcoding pre-extracted stream for video %s", job.ID, req.VideoID)

	result, err := s.stream.Execute(ctx, job)
	if err != nil {
		log.Printf("[JOB %s] Stream transcode failed: %v", job.ID, err)
		return nil, err
	}

	return s.respond(job, result, string(s.stream.Kind()))
}

// respond builds the success payload after confirming the artifact actually
// exists. A strategy that claims success without a file on disk is a bug,
// not a client-visible half-result.
func (s *ConvertService) respond(job *model.ConversionJob, result *strategy.Result, method string) (*model.ConvertResponse, error) {
	if _, err := os.Stat(result.Path); err != nil {
		return nil, fmt.Errorf("produced file disappeared before response")
	}

	log.Printf("[JOB %s] Conversion finished via %s: %s", job.ID, method, result.Filename)
	return &model.ConvertResponse{
		Success:  true,
		Filename: result.Filename,
		Title:    result.Title,
		Method:   method,
	}, nil
}

func logAttempts(jobID string, attempts []fallback.Attempt) {
	for _, a := range attempts {
		if a.Err != nil {
			log.Printf("[JOB %s] Strategy %s failed: %v", jobID, a.Name, a.Err)
		} else {
			log.Printf("[JOB %s] Strategy %s succeeded", jobID, a.Name)
		}
	}
}

func isSupportedURL(rawURL string) bool {
	for _, domain := range supportedDomains {
		if strings.Contains(rawURL, domain) {
			return true
		}
	}
	return false
}
