package blobstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")

	s, err := NewFileSystemStore("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	for _, dir := range []string{"content", "metadata"} {
		if _, err := os.Stat(filepath.Join(root, dir)); err != nil {
			t.Errorf("%s directory not created: %v", dir, err)
		}
	}
	if s.name != "test" {
		t.Errorf("name = %q, want %q", s.name, "test")
	}
}

func TestFileSystemStore_Layout(t *testing.T) {
	s, err := NewFileSystemStore("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.PutMetadata("lib-1", "catalog", strings.NewReader("db"), 2, 7); err != nil {
		t.Fatalf("PutMetadata() error = %v", err)
	}
	version, err := os.ReadFile(filepath.Join(s.metadataDir, "lib-1", "catalog.version"))
	if err != nil {
		t.Fatalf("version file missing: %v", err)
	}
	if string(version) != "7" {
		t.Errorf("version file = %q, want 7", version)
	}

	entries, err := os.ReadDir(filepath.Join(s.metadataDir, "lib-1"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileSystemStore_RejectsEscapingNames(t *testing.T) {
	s, err := NewFileSystemStore("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	if err := s.PutContent("../evil", strings.NewReader("x"), 1); err == nil {
		t.Error("PutContent() accepted a path in the checksum")
	}
	if err := s.PutMetadata("..", "catalog", strings.NewReader("x"), 1, 1); err == nil {
		t.Error("PutMetadata() accepted .. as library id")
	}
}

func TestFileSystemStore_ValidateSetup(t *testing.T) {
	s := &FileSystemStore{
		name:        "test",
		root:        "/nonexistent/path",
		contentDir:  "/nonexistent/path/content",
		metadataDir: "/nonexistent/path/metadata",
	}
	if err := s.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error for missing root")
	}
}
