package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Resolve for unknown or unsafe filenames.
var ErrNotFound = errors.New("file not found")

// Store owns the output directory. It is the only component that deletes
// artifacts; adapters only ever create them under unique fingerprinted
// names, so concurrent jobs never contend on a write. Two deletion paths
// (post-download deferred delete and the periodic sweep) race over the same
// files, which is why every delete re-checks existence first.
type Store struct {
	dir         string
	maxAge      time.Duration
	deleteDelay time.Duration
	now         func() time.Time
}

// Option is a functional option for configuring Store.
type Option func(*Store)

// WithClock sets a custom time source (for testing sweeps).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, maxAge, deleteDelay time.Duration, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s := &Store{
		dir:         dir,
		maxAge:      maxAge,
		deleteDelay: deleteDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the output directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path joins a bare artifact filename onto the output directory. It does not
// validate the name; use Resolve for externally supplied filenames.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Resolve maps an externally supplied filename to a path strictly inside the
// output directory. Anything that is not a bare filename — separators,
// parent references, empty names — is rejected as ErrNotFound, as is a name
// that simply does not exist (it may have been downloaded or swept already).
func (s *Store) Resolve(filename string) (string, error) {
	if filename == "" ||
		strings.ContainsAny(filename, "/\\") ||
		filename != filepath.Base(filename) ||
		strings.HasPrefix(filename, ".") {
		return "", ErrNotFound
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// ScheduleDelete removes an artifact after the configured grace period. The
// delay lets an in-flight download response flush before the file goes away.
// A file already gone at delete time is not an error.
func (s *Store) ScheduleDelete(path string) {
	time.AfterFunc(s.deleteDelay, func() {
		if s.removeIfExists(path) {
			log.Printf("[Store] Deleted file after download: %s", filepath.Base(path))
		}
	})
}

// Sweep deletes every artifact older than the configured max age, judged by
// last-modified time. Per-file failures are logged and do not stop the
// sweep. Safe to invoke concurrently with downloads and other sweeps.
func (s *Store) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("[Sweep] Failed to read output directory: %v", err)
		return
	}

	now := s.now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Deleted between ReadDir and Stat, nothing to do.
			continue
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if s.removeIfExists(path) {
			log.Printf("[Sweep] Cleaned up old file: %s", entry.Name())
		}
	}
}

// RunSweeper sweeps on a fixed interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Discard removes a partial or abandoned output file right away. Used by
// adapters whose subprocess died mid-write; a truncated mp3 must never sit in
// the directory waiting to be served.
func (s *Store) Discard(path string) {
	if s.removeIfExists(path) {
		log.Printf("[Store] Discarded partial file: %s", filepath.Base(path))
	}
}

// removeIfExists deletes path if it still exists, reporting whether a file
// was actually removed. The existence check guards the race between the two
// deletion paths.
func (s *Store) removeIfExists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Store] Failed to delete %s: %v", filepath.Base(path), err)
		}
		return false
	}
	return true
}
