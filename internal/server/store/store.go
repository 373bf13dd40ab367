// Package store is the filesystem storage behind the dashboard. Uploads keep
// their client-relative paths under a single data root; the filesystem is the
// source of truth for listings and content.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/watchdeck/watchdeck/internal/utils"
)

// ReservedPrefix is the top-level directory holding server state (journal,
// locks). It is never served, listed or writable through the API.
const ReservedPrefix = ".watchdeck"

var (
	ErrNotFound    = errors.New("store: file not found")
	ErrInvalidPath = errors.New("store: invalid path")
)

type Store struct {
	root string
}

func New(dataDir string) (*Store, error) {
	root, err := utils.ResolvePath(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir '%s': %w", dataDir, err)
	}
	if err := utils.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("create data dir '%s': %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute data directory.
func (s *Store) Root() string {
	return s.root
}

// resolve maps a client-supplied storage key to an absolute path strictly
// inside the data root. Empty keys, absolute paths, parent traversal and the
// reserved prefix are all ErrInvalidPath.
func (s *Store) resolve(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}

	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the data root", ErrInvalidPath, key)
	}
	if clean == ReservedPrefix || strings.HasPrefix(clean, ReservedPrefix+"/") {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidPath, key)
	}

	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Save writes the reader's bytes at the key, creating parent directories.
// An existing file is overwritten, re-uploads are the common case.
func (s *Store) Save(key string, r io.Reader) (int64, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, err
	}

	if err := utils.EnsureParent(full); err != nil {
		return 0, fmt.Errorf("create parent for '%s': %w", key, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create '%s': %w", key, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write '%s': %w", key, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close '%s': %w", key, err)
	}
	return n, nil
}

// Content returns the stored bytes at the key. Missing files and anything
// that is not a regular file report ErrNotFound.
func (s *Store) Content(key string) ([]byte, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat '%s': %w", key, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", key, err)
	}
	return data, nil
}

// Delete removes the file at the key and prunes now-empty parent directories
// up to the data root. Missing paths and non-regular files (a watcher may
// forward directory removals) report ErrNotFound.
func (s *Store) Delete(key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}

	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("stat '%s': %w", key, err)
	}
	if !info.Mode().IsRegular() {
		return ErrNotFound
	}

	if err := os.Remove(full); err != nil {
		return fmt.Errorf("remove '%s': %w", key, err)
	}

	s.pruneEmptyDirs(filepath.Dir(full))
	return nil
}

// pruneEmptyDirs walks upward removing empty directories, stopping at the
// data root or the first non-empty ancestor. Errors are ignored, pruning is
// cosmetic.
func (s *Store) pruneEmptyDirs(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
