package catalog_test

import (
	"testing"

	"photocat/internal/catalog"
)

func intPtr(v int) *int { return &v }

func TestService_AddCamera(t *testing.T) {
	tests := []struct {
		name    string
		spec    catalog.CameraSpec
		wantErr bool
	}{
		{"minimal", catalog.CameraSpec{Make: "FUJIFILM", Key: "fuji"}, false},
		{"window", catalog.CameraSpec{Model: "X-T20", Key: "xt20", FileNumberStart: intPtr(4), FileNumberEnd: intPtr(8)}, false},
		{"missing key", catalog.CameraSpec{Make: "FUJIFILM"}, true},
		{"half window", catalog.CameraSpec{Key: "a", FileNumberStart: intPtr(4)}, true},
		{"empty window", catalog.CameraSpec{Key: "b", FileNumberStart: intPtr(4), FileNumberEnd: intPtr(4)}, true},
		{"negative start", catalog.CameraSpec{Key: "c", FileNumberStart: intPtr(-1), FileNumberEnd: intPtr(4)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.AddCamera(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("AddCamera() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("duplicate key", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.svc.AddCamera(catalog.CameraSpec{Make: "A", Key: "k"}); err != nil {
			t.Fatalf("AddCamera() error = %v", err)
		}
		if _, err := h.svc.AddCamera(catalog.CameraSpec{Make: "B", Key: "k"}); err == nil {
			t.Error("AddCamera() expected error for duplicate key")
		}
	})
}

func TestService_SeedCameras(t *testing.T) {
	h := newHarness(t)
	specs := []catalog.CameraSpec{
		{Make: "FUJIFILM", Key: "fuji"},
		{Make: "OLYMPUS", Key: "oly"},
	}
	if err := h.svc.SeedCameras(specs); err != nil {
		t.Fatalf("SeedCameras() error = %v", err)
	}
	if err := h.svc.SeedCameras(specs); err != nil {
		t.Fatalf("SeedCameras() second run error = %v", err)
	}

	cams, err := h.svc.ListCameras()
	if err != nil {
		t.Fatalf("ListCameras() error = %v", err)
	}
	if len(cams) != 2 {
		t.Fatalf("ListCameras() = %d cameras, want 2", len(cams))
	}
	if cams[0].Key != "fuji" || cams[1].Key != "oly" {
		t.Errorf("registry order = %s, %s", cams[0].Key, cams[1].Key)
	}
}

func TestService_ScanMatchesMostSpecificCamera(t *testing.T) {
	h := newHarness(t)
	h.addRoot(t, "/lib")
	if err := h.svc.SeedCameras([]catalog.CameraSpec{
		{Make: "FUJIFILM", Key: "fuji"},
		{Make: "FUJIFILM", Model: "X-T20", Key: "xt20"},
	}); err != nil {
		t.Fatalf("SeedCameras() error = %v", err)
	}
	h.addImage("/lib/a.jpg", fujiTags("2023:06:01 09:00:00"))
	h.scan(t, "/lib", false)

	info, err := h.svc.GetImageInfo(h.fsmgr.MustResolve("/lib/a.jpg"))
	if err != nil {
		t.Fatalf("GetImageInfo() error = %v", err)
	}
	if info.CameraKey != "xt20" {
		t.Errorf("CameraKey = %q, want xt20", info.CameraKey)
	}
}
