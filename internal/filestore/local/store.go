// Package local provides a filestore.Sink that writes into a directory on
// the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/koustreak/metadump/internal/errs"
)

// Store writes documents into Dir, overwriting existing files in place.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. An empty dir means the working directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("output directory %s", dir), err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("output directory %s is not a directory", dir))
	}
	return &Store{dir: dir}, nil
}

// Put truncates and rewrites the file. No temp file is used, so a failed
// write can leave a partial document behind.
func (s *Store) Put(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "write cancelled", err)
	}

	if err := os.WriteFile(s.path(name), body, 0o644); err != nil {
		if os.IsPermission(err) {
			return errs.Wrap(errs.ErrKindWriteFailed, "permission denied", err)
		}
		return errs.Wrap(errs.ErrKindWriteFailed, "failed to write file", err)
	}
	return nil
}

func (s *Store) Location(name string) string {
	p := s.path(name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
