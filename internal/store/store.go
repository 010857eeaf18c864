// Package store persists post records as files, one per slug.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/blog-publisher/internal/slug"
)

const (
	dirPerm    = 0o755
	filePerm   = 0o644
	tempPrefix = ".tmp-"
)

var (
	ErrSlugExists  = errors.New("post slug already exists")
	ErrInvalidSlug = errors.New("invalid post slug")
	ErrNotFound    = errors.New("post record not found")
	ErrStorage     = errors.New("post storage failure")
)

// WriteResult describes a record that was created.
type WriteResult struct {
	Slug  string
	Path  string
	Bytes int
}

// FileStore keeps records under a single directory as <slug><ext>.
type FileStore struct {
	dir string
	ext string
}

// New returns a FileStore rooted at dir. The directory is created on first write.
func New(dir, ext string) *FileStore {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FileStore{dir: dir, ext: ext}
}

func (s *FileStore) Dir() string { return s.dir }

// Path returns the record location for slug.
func (s *FileStore) Path(postSlug string) string {
	return filepath.Join(s.dir, postSlug+s.ext)
}

// Write creates the record for postSlug. It never replaces an existing record:
// the content is staged in a temp file and hard-linked into place, and the
// link fails when the name is taken.
func (s *FileStore) Write(ctx context.Context, postSlug, content string) (*WriteResult, error) {
	if !slug.Valid(postSlug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, postSlug)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %w", ErrStorage, s.dir, err)
	}

	tmpPath, err := s.stage(content)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	final := s.Path(postSlug)
	if err := os.Link(tmpPath, final); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrSlugExists, postSlug)
		}
		return nil, fmt.Errorf("%w: link %s: %w", ErrStorage, final, err)
	}
	syncDir(s.dir)

	return &WriteResult{Slug: postSlug, Path: final, Bytes: len(content)}, nil
}

// stage writes content to a hidden temp file in the store directory and flushes it.
func (s *FileStore) stage(content string) (string, error) {
	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrStorage, err)
	}
	name := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("%w: write temp file: %w", ErrStorage, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("%w: chmod temp file: %w", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("%w: sync temp file: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("%w: close temp file: %w", ErrStorage, err)
	}
	return name, nil
}

// syncDir flushes the directory entry, best effort.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Read returns the raw record for postSlug.
func (s *FileStore) Read(ctx context.Context, postSlug string) ([]byte, error) {
	if !slug.Valid(postSlug) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, postSlug)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(postSlug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, postSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, postSlug, err)
	}
	return data, nil
}

// List returns the slug of every record in file name order. Temp files are
// skipped and a missing directory is an empty store.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStorage, s.dir, err)
	}

	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, s.ext))
	}
	return slugs, nil
}
