package catalog_test

import (
	"errors"
	"testing"

	"photocat/internal/metadata"
)

func TestService_ListDirectory(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/b.jpg", completeTags())
	h.addImage("/lib/a.jpg", completeTags())
	h.addImage("/lib/2023/c.jpg", completeTags())
	h.scan(t, "/lib", false)

	images, err := h.svc.ListImages(h.fsmgr.MustResolve("/lib"))
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	if len(images) != 2 || images[0].Filename != "a.jpg" || images[1].Filename != "b.jpg" {
		t.Errorf("images = %v", images)
	}

	dirs, err := h.svc.ListSubdirectories(h.fsmgr.MustResolve("/lib"))
	if err != nil {
		t.Fatalf("ListSubdirectories() error = %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "2023" {
		t.Errorf("dirs = %v", dirs)
	}

	h.fsmgr.AddDirectory("/elsewhere")
	if _, err := h.svc.ListImages(h.fsmgr.MustResolve("/elsewhere")); err == nil {
		t.Error("expected error for a directory outside every root")
	}
}

func TestService_AddAuthor(t *testing.T) {
	h := newHarness(t)

	first, err := h.svc.AddAuthor("Jane Doe")
	if err != nil {
		t.Fatalf("AddAuthor() error = %v", err)
	}
	second, err := h.svc.AddAuthor("Jane Doe")
	if err != nil {
		t.Fatalf("AddAuthor() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("duplicate author created: %s != %s", first.ID, second.ID)
	}
	if _, err := h.svc.AddAuthor(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestService_GetHistory(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"AddRoot", "Scan", "RenameFiles"} {
		op, err := h.db.CreateOperation(name, "/lib")
		if err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
		if err := h.db.FinishOperation(op.ID, "success"); err != nil {
			t.Fatalf("FinishOperation() error = %v", err)
		}
	}

	ops, err := h.svc.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("history length = %d, want 2", len(ops))
	}
	if ops[0].Operation != "RenameFiles" || ops[1].Operation != "Scan" {
		t.Errorf("history order = %s, %s", ops[0].Operation, ops[1].Operation)
	}
}

func TestService_Capabilities(t *testing.T) {
	h := newHarness(t)

	caps, err := h.svc.Capabilities("DSCF0001.RAF")
	if err != nil {
		t.Fatalf("Capabilities() error = %v", err)
	}
	if len(caps) != 2 || caps[0] != metadata.FacetDateTime || caps[1] != metadata.FacetAuthor {
		t.Errorf("raw capabilities = %v", caps)
	}

	caps, err = h.svc.Capabilities("a.jpg_original")
	if err != nil {
		t.Fatalf("Capabilities() error = %v", err)
	}
	if len(caps) != 0 {
		t.Errorf("backup capabilities = %v, want none", caps)
	}

	if _, err := h.svc.Capabilities("notes.txt"); !errors.Is(err, metadata.ErrUnsupportedExtension) {
		t.Errorf("Capabilities(notes.txt) error = %v, want ErrUnsupportedExtension", err)
	}
}
