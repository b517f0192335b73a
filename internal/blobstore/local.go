package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore implements Store over a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir. The root itself is created
// on first write, not here, so a missing root is a valid pre-first-sync state.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Root returns the root directory of the store.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(path string) string {
	return filepath.Join(append([]string{s.root}, SplitPath(path)...)...)
}

func (s *LocalStore) Exists(path string) bool {
	_, err := os.Stat(s.resolve(path))
	return err == nil
}

func (s *LocalStore) ListDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

func (s *LocalStore) ListFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func (s *LocalStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *LocalStore) Write(path string, data []byte) error {
	if err := os.WriteFile(s.resolve(path), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates the directory segment by segment, checking existence
// before each create so a concurrent create by another walker is not an error.
func (s *LocalStore) MkdirAll(path string) error {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("cannot create directory with empty path")
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating store root: %w", err)
	}

	current := ""
	for _, seg := range segs {
		current = Join(current, seg)
		if s.Exists(current) {
			continue
		}
		if err := os.Mkdir(s.resolve(current), 0o755); err != nil {
			if s.Exists(current) {
				continue
			}
			return fmt.Errorf("creating directory %s: %w", current, err)
		}
	}
	return nil
}

func (s *LocalStore) Delete(path string) error {
	if err := os.Remove(s.resolve(path)); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}
