package blobstore

import (
	"path/filepath"
	"testing"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"a", "b", "c"}, "a/b/c"},
		{[]string{"a", "", "c"}, "a/c"},
		{[]string{}, ""},
		{[]string{"base", "2024", "Q1"}, "base/2024/Q1"},
	}
	for _, tt := range tests {
		if got := Join(tt.parts...); got != tt.want {
			t.Errorf("Join(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "data"))

	if store.Exists("2024") {
		t.Error("expected missing root to report nothing exists")
	}

	if err := store.MkdirAll("2024/Q1/Banks"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := store.Write("2024/Q1/Banks/file.xml", []byte("<root/>")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := store.Read("2024/Q1/Banks/file.xml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "<root/>" {
		t.Errorf("unexpected content: %q", data)
	}

	dirs, err := store.ListDirs("2024")
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != "Q1" {
		t.Errorf("expected [Q1], got %v", dirs)
	}

	files, err := store.ListFiles("2024/Q1/Banks")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "file.xml" {
		t.Errorf("expected [file.xml], got %v", files)
	}
}

func TestLocalStoreMkdirAllIdempotent(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	for i := 0; i < 2; i++ {
		if err := store.MkdirAll("a/b/c"); err != nil {
			t.Fatalf("MkdirAll attempt %d: %v", i+1, err)
		}
	}
	if !store.Exists("a/b/c") {
		t.Error("expected directory to exist")
	}
}

func TestMemStoreListing(t *testing.T) {
	store := NewMemStore()
	if err := store.MkdirAll("2024/Q1/Banks/RY-CA_Royal_Bank"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := store.Write("2024/Q1/Banks/RY-CA_Royal_Bank/a.xml", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dirs, err := store.ListDirs("2024/Q1")
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != "Banks" {
		t.Errorf("expected [Banks], got %v", dirs)
	}

	files, err := store.ListFiles("2024/Q1/Banks/RY-CA_Royal_Bank")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "a.xml" {
		t.Errorf("expected [a.xml], got %v", files)
	}

	if _, err := store.ListFiles("nonexistent"); err == nil {
		t.Error("expected error listing missing directory")
	}
}

func TestMemStoreWriteRequiresParent(t *testing.T) {
	store := NewMemStore()
	if err := store.Write("missing/dir/file.xml", []byte("x")); err == nil {
		t.Error("expected error writing without parent directory")
	}
}
