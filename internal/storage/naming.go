package storage

import (
	"strings"
	"time"
)

// placeholderTitle is used when sanitizing strips a title down to nothing.
const placeholderTitle = "audio"

// Fingerprint returns the uniqueness token embedded in artifact filenames.
// Millisecond resolution means two jobs landing in the same millisecond can
// collide; known gap, kept for compatibility with the `video-<ts>` naming
// scheme the local tool's output discovery depends on.
func Fingerprint(t time.Time) int64 {
	return t.UnixMilli()
}

// SanitizeTitle turns adapter-reported metadata into a filename-safe token:
// whitespace collapses to single underscores, anything outside
// [A-Za-z0-9._-] is dropped, and leading/trailing separators are trimmed.
// Never returns an empty string.
func SanitizeTitle(title string) string {
	var b strings.Builder
	lastSep := true // swallow leading separators
	for _, r := range title {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-':
			b.WriteRune(r)
			lastSep = false
		case r == '_':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
	}

	s := strings.Trim(b.String(), "._-")
	if s == "" {
		return placeholderTitle
	}
	return s
}
