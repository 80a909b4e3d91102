// Package strategy holds the acquisition strategies: independent, swappable
// techniques for turning a source URL (or a pre-extracted stream URL) into a
// local audio file. The orchestrator in internal/service chains them; each
// strategy only knows how to succeed or fail on its own.
package strategy

import (
	"context"
	"regexp"

	"github.com/tunepull/api/internal/model"
)

// Result is the uniform outcome every strategy produces: a finished, playable
// audio file inside the output directory plus a best-effort display title.
type Result struct {
	Path     string
	Filename string
	Title    string
}

// Strategy executes one acquisition technique for a job. Any non-success
// condition is a single error carrying a short diagnostic; callers never see
// adapter-specific error types.
type Strategy interface {
	Kind() model.StrategyKind
	Execute(ctx context.Context, job *model.ConversionJob) (*Result, error)
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]+)`),
}

// VideoIDFromURL extracts the video ID from the usual watch/short/embed URL
// shapes. Returns "" when the URL carries no recognizable ID.
func VideoIDFromURL(rawURL string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}
