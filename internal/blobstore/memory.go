package blobstore

import (
	"fmt"
	"sort"
	"strings"
)

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func normalize(path string) string {
	return Join(SplitPath(path)...)
}

func (s *MemStore) Exists(path string) bool {
	p := normalize(path)
	if _, ok := s.files[p]; ok {
		return true
	}
	return s.dirs[p]
}

func (s *MemStore) ListDirs(path string) ([]string, error) {
	p := normalize(path)
	if !s.dirs[p] {
		return nil, fmt.Errorf("no such directory: %s", path)
	}
	seen := make(map[string]bool)
	for d := range s.dirs {
		if name, ok := childName(p, d); ok {
			seen[name] = true
		}
	}
	return sortedKeys(seen), nil
}

func (s *MemStore) ListFiles(path string) ([]string, error) {
	p := normalize(path)
	if !s.dirs[p] {
		return nil, fmt.Errorf("no such directory: %s", path)
	}
	seen := make(map[string]bool)
	for f := range s.files {
		if name, ok := childName(p, f); ok {
			seen[name] = true
		}
	}
	return sortedKeys(seen), nil
}

func (s *MemStore) Read(path string) ([]byte, error) {
	data, ok := s.files[normalize(path)]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Write(path string, data []byte) error {
	p := normalize(path)
	parent := parentDir(p)
	if parent != "" && !s.dirs[parent] {
		return fmt.Errorf("parent directory does not exist: %s", parent)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[p] = stored
	return nil
}

func (s *MemStore) MkdirAll(path string) error {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("cannot create directory with empty path")
	}
	current := ""
	for _, seg := range segs {
		current = Join(current, seg)
		s.dirs[current] = true
	}
	return nil
}

func (s *MemStore) Delete(path string) error {
	p := normalize(path)
	if _, ok := s.files[p]; !ok {
		return fmt.Errorf("no such file: %s", path)
	}
	delete(s.files, p)
	return nil
}

// childName returns the final segment of full if full is a direct child of dir.
func childName(dir, full string) (string, bool) {
	if dir == "" {
		if !strings.Contains(full, "/") && full != "" {
			return full, true
		}
		return "", false
	}
	rest, ok := strings.CutPrefix(full, dir+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
