package catalog_test

import (
	"testing"
)

func TestService_AddRoot(t *testing.T) {
	t.Run("adds root once", func(t *testing.T) {
		h := newHarness(t)
		first := h.addRoot(t, "/lib")
		second := h.addRoot(t, "/lib")

		if first.ID != second.ID {
			t.Errorf("second AddRoot() created %s, want existing %s", second.ID, first.ID)
		}
		roots, err := h.svc.ListRoots()
		if err != nil {
			t.Fatalf("ListRoots() error = %v", err)
		}
		if len(roots) != 1 {
			t.Errorf("ListRoots() = %d roots, want 1", len(roots))
		}
	})

	t.Run("rejects overlapping roots", func(t *testing.T) {
		h := newHarness(t)
		h.addRoot(t, "/lib")
		h.fsmgr.AddDirectory("/lib/2023")

		if _, err := h.svc.AddRoot(h.fsmgr.MustResolve("/lib/2023")); err == nil {
			t.Error("AddRoot() expected error for nested root")
		}
	})

	t.Run("rejects files", func(t *testing.T) {
		h := newHarness(t)
		h.fsmgr.AddFile("/lib/a.jpg", nil)

		if _, err := h.svc.AddRoot(h.fsmgr.MustResolve("/lib/a.jpg")); err == nil {
			t.Error("AddRoot() expected error for a file")
		}
	})
}

func TestService_RemoveRoot(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/sub/a.jpg", nil)
	h.scan(t, "/lib", false)

	if err := h.svc.RemoveRoot("/lib"); err != nil {
		t.Fatalf("RemoveRoot() error = %v", err)
	}
	if dir, _ := h.svc.DirectoryForPath("/lib/sub"); dir != nil {
		t.Error("subdirectory survived root removal")
	}
	if !h.fsmgr.Exists("/lib/sub/a.jpg") {
		t.Error("RemoveRoot() touched files on disk")
	}
	if err := h.svc.RemoveRoot("/lib"); err == nil {
		t.Error("RemoveRoot() expected error for unknown root")
	}
}

func TestService_DirectoryForPath(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addRoot(t, "/library2")
	h.addImage("/lib/2023/06/a.jpg", nil)
	h.scan(t, "/lib", false)

	tests := []struct {
		path string
		want string
	}{
		{"/lib", "/lib"},
		{"/lib/2023", "2023"},
		{"/lib/2023/06", "06"},
		{"/lib/2024", ""},
		{"/library2", "/library2"},
		{"/other", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dir, err := h.svc.DirectoryForPath(tt.path)
			if err != nil {
				t.Fatalf("DirectoryForPath() error = %v", err)
			}
			got := ""
			if dir != nil {
				got = dir.Name
			}
			if got != tt.want {
				t.Errorf("DirectoryForPath(%s) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	dir, _ := h.svc.DirectoryForPath("/lib/2023/06")
	abs, err := h.svc.AbsolutePath(dir)
	if err != nil {
		t.Fatalf("AbsolutePath() error = %v", err)
	}
	if abs != "/lib/2023/06" {
		t.Errorf("AbsolutePath() = %s, want /lib/2023/06", abs)
	}
}
