// Package spool keeps uploaded documents on disk for the lifetime of one
// request. The table detector reads from a real file handle, so request
// bodies are written out before extraction and removed afterwards.
package spool

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Spool manages scratch files under one directory.
type Spool struct {
	dir    string
	logger *slog.Logger
}

// New creates the spool directory if needed.
func New(dir string, logger *slog.Logger) (*Spool, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Spool{dir: dir, logger: logger}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string { return s.dir }

// Put writes r to a fresh scratch file and rewinds it for reading. The
// returned cleanup closes and removes the file; callers must run it on
// every exit path.
func (s *Spool) Put(r io.Reader) (*os.File, func(), error) {
	path := filepath.Join(s.dir, uuid.New().String()+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create spool file: %w", err)
	}

	cleanup := func() {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			s.logger.Warn("failed to close spool file", "path", path, "error", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove spool file", "path", path, "error", err)
		}
	}

	if _, err := io.Copy(f, r); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to write spool file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to rewind spool file: %w", err)
	}
	return f, cleanup, nil
}

// Sweep removes spool files older than maxAge. Put's cleanup removes files
// on the request path; the sweep catches leftovers after crashes.
func (s *Spool) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read spool directory: %w", err)
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove stale spool file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
