// Package local implements the object store on a local directory, mainly for
// development and tests.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/comfortlab/comfortcast/internal/storage"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

type store struct {
	baseDir string
}

var _ storage.ObjectStore = (*store)(nil)

// New creates a directory-backed object store, creating baseDir if needed.
func New(cfg storage.Config) (storage.ObjectStore, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage: baseDir must be configured")
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local storage: create baseDir %q: %w", cfg.BaseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage: stat baseDir %q: %w", cfg.BaseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage: baseDir %q is not a directory", cfg.BaseDir)
	}
	return &store{baseDir: cfg.BaseDir}, nil
}

func (s *store) Name() string { return "local:" + s.baseDir }

func (s *store) Close() error { return nil }

func (s *store) Upload(ctx context.Context, key string, data io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("local storage: create directory for %q: %w", key, err)
	}
	// Write to a sibling temp file and rename so a crashed run never leaves a
	// half-written object under the final key.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("local storage: create temp file for %q: %w", key, err)
	}
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("local storage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local storage: close temp file for %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local storage: finalize %q: %w", key, err)
	}
	logger.Debugf("local storage: uploaded %q", key)
	return nil
}

func (s *store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("local storage: open %q: %w", key, err)
	}
	return file, nil
}

func (s *store) List(ctx context.Context, prefix string, fn func(key string) error) error {
	return filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		key = filepath.ToSlash(key)
		if !strings.HasPrefix(key, prefix) || strings.HasPrefix(filepath.Base(key), ".upload-") {
			return nil
		}
		return fn(key)
	})
}

func (s *store) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("local storage: delete of missing object %q", key)
			return nil
		}
		return fmt.Errorf("local storage: delete %q: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path under baseDir and rejects keys escaping it.
func (s *store) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("local storage: resolve baseDir: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("local storage: resolve %q: %w", key, err)
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("local storage: key %q escapes baseDir", key)
	}
	return path, nil
}
