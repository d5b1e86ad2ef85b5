package catalog_test

import (
	"testing"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

func TestService_TrashRejected(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/2023/a.jpg", nil)
	h.fsmgr.AddFile("/lib/2023/a.raf", nil)
	h.addImage("/lib/2023/b.jpg", nil)
	h.scan(t, "/lib", false)
	a := h.image(t, "/lib/2023/a.jpg")
	if _, err := h.svc.SetPickLabel([]string{a.ID}, metadata.PickRejected); err != nil {
		t.Fatalf("SetPickLabel() error = %v", err)
	}

	n, err := h.svc.TrashRejected(h.fsmgr.MustResolve("/lib/2023"))
	if err != nil {
		t.Fatalf("TrashRejected() error = %v", err)
	}
	if n != 1 {
		t.Errorf("TrashRejected() = %d, want 1", n)
	}
	for _, p := range []string{"/lib/.trash/a.jpg", "/lib/.trash/a.raf"} {
		if !h.fsmgr.Exists(p) {
			t.Errorf("%s not in trash", p)
		}
	}
	if img, _ := h.svc.ImageForPath("/lib/2023/a.jpg"); img != nil {
		t.Error("trashed image is still cataloged")
	}
	h.image(t, "/lib/2023/b.jpg")

	if stats := h.scan(t, "/lib", false); stats.Images != 0 {
		t.Errorf("rescan picked up %d images from the trash", stats.Images)
	}
}

func TestService_TrashUnstarredRaws(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/a.jpg", nil)
	h.fsmgr.AddFile("/lib/a.raf", nil)
	h.fsmgr.AddFile("/lib/a.xmp", nil)
	h.addImage("/lib/b.jpg", metadata.RawTags{metadata.KeyRating: float64(2)})
	h.fsmgr.AddFile("/lib/b.raf", nil)
	h.scan(t, "/lib", false)

	n, err := h.svc.TrashUnstarredRaws(h.fsmgr.MustResolve("/lib"))
	if err != nil {
		t.Fatalf("TrashUnstarredRaws() error = %v", err)
	}
	if n != 1 {
		t.Errorf("TrashUnstarredRaws() = %d, want 1", n)
	}
	if !h.fsmgr.Exists("/lib/.trash/a.raf") || !h.fsmgr.Exists("/lib/b.raf") || !h.fsmgr.Exists("/lib/a.xmp") {
		t.Error("wrong files were trashed")
	}

	a := h.image(t, "/lib/a.jpg")
	atts, _ := h.db.FindAttachmentsByImage(a.ID)
	for _, att := range atts {
		if att.Kind == model.AttachmentRaw {
			t.Errorf("raw attachment %s still cataloged", att.Filename)
		}
	}
}

func TestService_TrashUnstarredVideos(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/a.mov", nil)
	h.fsmgr.AddFile("/lib/a.xmp", nil)
	h.addImage("/lib/b.mp4", metadata.RawTags{metadata.KeyXMPRating: float64(2)})
	h.addImage("/lib/c.jpg", nil)
	h.scan(t, "/lib", false)

	n, err := h.svc.TrashUnstarredVideos(h.fsmgr.MustResolve("/lib"))
	if err != nil {
		t.Fatalf("TrashUnstarredVideos() error = %v", err)
	}
	if n != 1 {
		t.Errorf("TrashUnstarredVideos() = %d, want 1", n)
	}
	for _, p := range []string{"/lib/.trash/a.mov", "/lib/.trash/a.xmp", "/lib/b.mp4", "/lib/c.jpg"} {
		if !h.fsmgr.Exists(p) {
			t.Errorf("%s missing", p)
		}
	}
	if img, _ := h.svc.ImageForPath("/lib/a.mov"); img != nil {
		t.Error("trashed video is still cataloged")
	}
	h.image(t, "/lib/b.mp4")
	h.image(t, "/lib/c.jpg")
}
