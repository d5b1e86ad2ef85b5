package catalog_test

import (
	"testing"
)

func TestService_Organize(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/a.jpg", completeTags())
	h.fsmgr.AddFile("/lib/a.raf", nil)
	h.addImage("/lib/b.jpg", nil)
	h.scan(t, "/lib", false)

	a := h.image(t, "/lib/a.jpg")
	b := h.image(t, "/lib/b.jpg")
	if _, err := h.svc.SetRating([]string{a.ID}, 5); err != nil {
		t.Fatalf("SetRating() error = %v", err)
	}

	report, err := h.svc.Organize([]string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	if report.Moved != 1 || report.Skipped != 1 || len(report.Conflicts) != 0 {
		t.Errorf("report = %+v, want 1 moved and 1 skipped", report)
	}
	if report.Scan.Images != 0 {
		t.Errorf("rescan added %d images, want 0", report.Scan.Images)
	}

	for _, p := range []string{"/lib/2023-06-01/a.jpg", "/lib/2023-06-01/a.raf", "/lib/b.jpg"} {
		if !h.fsmgr.Exists(p) {
			t.Errorf("%s missing", p)
		}
	}
	moved := h.image(t, "/lib/2023-06-01/a.jpg")
	if moved.ID != a.ID {
		t.Errorf("moved image has a new row: %s != %s", moved.ID, a.ID)
	}
	if moved.Rating != 5 {
		t.Errorf("rating = %d after organize, want 5", moved.Rating)
	}
	if img, _ := h.svc.ImageForPath("/lib/a.jpg"); img != nil {
		t.Error("image still cataloged at its old path")
	}

	again, err := h.svc.Organize([]string{a.ID})
	if err != nil {
		t.Fatalf("second Organize() error = %v", err)
	}
	if again.Moved != 0 || again.Skipped != 1 {
		t.Errorf("second run = %+v, want the organized image skipped", again)
	}
}

func TestService_OrganizeConflict(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	h.addImage("/lib/a.jpg", completeTags())
	h.fsmgr.AddFile("/lib/2023-06-01/a.jpg", []byte("other"))
	h.scan(t, "/lib", false)
	a := h.image(t, "/lib/a.jpg")

	report, err := h.svc.Organize([]string{a.ID})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	if report.Moved != 0 || len(report.Conflicts) != 1 {
		t.Errorf("report = %+v, want one conflict", report)
	}
	if !h.fsmgr.Exists("/lib/a.jpg") {
		t.Error("conflicting image was moved")
	}
}
