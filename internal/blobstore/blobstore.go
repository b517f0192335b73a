// Package blobstore abstracts the hierarchical document store that holds
// transcripts, the invalid-document ledger, and run artifacts. Paths are
// forward-slash separated regardless of the backing implementation.
package blobstore

import "strings"

// Store is a durable hierarchical object store with directory semantics.
type Store interface {
	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool
	// ListDirs returns the names of subdirectories directly under path.
	ListDirs(path string) ([]string, error)
	// ListFiles returns the names of regular files directly under path.
	ListFiles(path string) ([]string, error)
	// Read returns the full contents of the file at path.
	Read(path string) ([]byte, error)
	// Write stores data at path, overwriting any existing file. Parent
	// directories must already exist.
	Write(path string, data []byte) error
	// MkdirAll creates the directory at path along with any missing parents.
	MkdirAll(path string) error
	// Delete removes the file at path.
	Delete(path string) error
}

// Join joins path segments with forward slashes, skipping empty segments.
func Join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// SplitPath splits a slash path into its non-empty segments.
func SplitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
