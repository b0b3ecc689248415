package configstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/fsutil"
)

const fileExtension = ".hcl"

// FSStore keeps each configuration as NAME.hcl inside a directory.
type FSStore struct {
	dir string
}

// NewFSStore returns a store rooted at dir. The directory is created on the
// first save.
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

func (s *FSStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

// Save writes body to the named file, replacing any previous version.
func (s *FSStore) Save(ctx context.Context, name string, body []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Write to a temp file first so a failed save never truncates the old one.
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}

	ctxlog.FromContext(ctx).Debug("Configuration saved.", "name", name, "path", s.path(name))
	return nil
}

// Load reads the named configuration.
func (s *FSStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	return body, nil
}

// List returns the names of the stored configurations in lexical order.
// Files in subdirectories are not listed.
func (s *FSStore) List(ctx context.Context) ([]string, error) {
	files, err := fsutil.FindFilesByExtension(s.dir, fileExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if filepath.Dir(f) != filepath.Clean(s.dir) {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(f), fileExtension))
	}
	return names, nil
}

// Delete removes the named configuration.
func (s *FSStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return err
}
