package model

import "time"

// JobMode selects how a conversion job acquires its audio.
type JobMode string

const (
	// ModeAuto runs the server-side strategy chain with fallback.
	ModeAuto JobMode = "auto"
	// ModeFromStream transcodes a stream URL the browser already extracted.
	// There is no fallback in this mode: the caller did client-side work and
	// a silent re-fallback would be surprising and wasteful.
	ModeFromStream JobMode = "fromPreExtractedStream"
)

// StrategyKind identifies one acquisition strategy. Its value is what the
// API reports in the `method` field of a successful conversion.
type StrategyKind string

const (
	StrategyRemoteAPI       StrategyKind = "remoteApi"
	StrategyLocalTool       StrategyKind = "localTool"
	StrategyStreamTranscode StrategyKind = "streamTranscode"
)

// ConversionJob is one user request. Immutable after creation and never
// persisted; it dies with the response.
type ConversionJob struct {
	ID          string
	SourceURL   string
	Mode        JobMode
	RequestedAt time.Time

	// Stream-mode inputs, set only for ModeFromStream.
	StreamURL string
	Title     string
	VideoID   string
}

// StrategyAttempt records one adapter invocation for diagnostics. The
// orchestrator logs these; they are never persisted or returned to clients.
type StrategyAttempt struct {
	Strategy    string
	Succeeded   bool
	ErrorDetail string
}
