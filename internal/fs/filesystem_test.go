package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"photocat/internal/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestOSFilesystemManager_ListDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "IMG_0001.JPG"), "jpeg")
	writeFile(t, filepath.Join(dir, "notes.tmp"), "tmp")
	writeFile(t, filepath.Join(dir, "local.skip"), "skip")
	writeFile(t, filepath.Join(dir, IgnoreFileName), "*.skip\n")
	if err := os.Mkdir(filepath.Join(dir, "2023"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := NewOSFilesystemManager([]string{"*.tmp"})
	entries, err := m.ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir() error = %v", err)
	}

	want := []catalog.DirEntry{
		{Name: "2023", IsDir: true},
		{Name: "IMG_0001.JPG", IsFile: true},
	}
	if len(entries) != len(want) {
		t.Fatalf("ListDir() = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestOSFilesystemManager_Rename(t *testing.T) {
	t.Run("moves file", func(t *testing.T) {
		dir := t.TempDir()
		src, dst := filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")
		writeFile(t, src, "a")

		m := NewOSFilesystemManager(nil)
		if err := m.Rename(src, dst); err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		if _, err := os.Stat(dst); err != nil {
			t.Errorf("target missing after rename: %v", err)
		}
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Errorf("source still present after rename")
		}
	})

	t.Run("never overwrites", func(t *testing.T) {
		dir := t.TempDir()
		src, dst := filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")
		writeFile(t, src, "a")
		writeFile(t, dst, "b")

		m := NewOSFilesystemManager(nil)
		err := m.Rename(src, dst)
		if !errors.Is(err, catalog.ErrFileExists) {
			t.Fatalf("Rename() error = %v, want ErrFileExists", err)
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "b" {
			t.Errorf("target content = %q, want unchanged", data)
		}
	})
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	m := NewOSFilesystemManager(nil)

	p, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !p.IsDir() || p.String() != dir {
		t.Errorf("Resolve() = %s (dir=%v), want %s directory", p.String(), p.IsDir(), dir)
	}

	if _, err := m.Resolve(filepath.Join(dir, "missing")); err == nil {
		t.Error("Resolve() expected error for missing path")
	}
}
