// Package blob stores item images as files outside the database.
package blob

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the image directory under the application data directory.
const DirName = "inventory_images"

// dataURLMarker separates a data URL header from its payload.
const dataURLMarker = "base64,"

// SweepGrace is the minimum age of a file before Sweep may remove it. Adds
// write their blob before the row exists, possibly in another process.
const SweepGrace = time.Minute

// ErrInvalidPayload is returned when an image payload is not valid base64.
var ErrInvalidPayload = errors.New("invalid image payload")

// ErrOutsideStore is returned when opening a path that is not inside the store directory.
var ErrOutsideStore = errors.New("path is outside the image directory")

// Store writes and removes image blobs in a single directory.
type Store struct {
	dir    string
	fs     FS
	now    func() time.Time
	grace  time.Duration
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFS replaces the host filesystem, primarily for testing.
func WithFS(fsys FS) Option {
	return func(s *Store) { s.fs = fsys }
}

// WithClock replaces time.Now for filename generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSweepGrace overrides SweepGrace.
func WithSweepGrace(d time.Duration) Option {
	return func(s *Store) { s.grace = d }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a blob store rooted at dir. The directory is created lazily on
// the first Save.
func New(dir string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving image directory: %w", err)
	}

	s := &Store{
		dir:    abs,
		fs:     OSFS{},
		now:    time.Now,
		grace:  SweepGrace,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the absolute directory blobs are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Decode decodes a bare base64 payload or the data part of a data URL.
func Decode(payload string) ([]byte, error) {
	if _, data, ok := strings.Cut(payload, dataURLMarker); ok {
		payload = data
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}

// Save decodes payload and writes it to a new img_<millis>.png file,
// returning its absolute path. Names are not checked for collisions.
func (s *Store) Save(payload string) (string, error) {
	data, err := Decode(payload)
	if err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("img_%d.png", s.now().UnixMilli()))
	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}

// Delete removes the blob at path. It never fails: errors are logged and dropped.
func (s *Store) Delete(path string) {
	if path == "" {
		return
	}
	BestEffort(s.logger, "delete image", path, s.fs.Remove(path))
}

// Open opens a blob for reading. Only files inside the store directory are served.
func (s *Store) Open(path string) (fs.File, error) {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return nil, ErrOutsideStore
	}
	f, err := s.fs.Open(filepath.Join(s.dir, rel))
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	return f, nil
}

// Sweep removes img_* files in the store directory that are not in referenced
// (a set of absolute paths) and returns the paths it removed. Files modified
// less than the grace period ago are kept, since a row may be about to
// reference them. A missing directory is not an error.
func (s *Store) Sweep(referenced map[string]bool) ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading image directory: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "img_") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if referenced[path] || s.recent(path) {
			continue
		}
		if err := s.fs.Remove(path); err != nil {
			BestEffort(s.logger, "sweep orphaned image", path, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// recent reports whether path was modified within the grace period. Files
// that cannot be stat'ed count as recent.
func (s *Store) recent(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil {
		BestEffort(s.logger, "stat image", path, err)
		return true
	}
	return s.now().Sub(info.ModTime()) < s.grace
}
