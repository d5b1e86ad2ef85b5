package catalog_test

import (
	"testing"

	"photocat/internal/catalog"
	"photocat/internal/metadata"
	"photocat/internal/model"
	"photocat/internal/testutil"
)

type harness struct {
	db     catalog.Database
	fsmgr  *testutil.MockFilesystemManager
	exif   *testutil.FakeExifTool
	thumbs *testutil.FakeThumbnailer
	svc    *catalog.Service
}

func newHarness(t *testing.T, opts ...catalog.Option) *harness {
	t.Helper()
	h := &harness{
		db:     testutil.NewTestDatabase(t),
		fsmgr:  testutil.NewMockFilesystemManager(),
		exif:   testutil.NewFakeExifTool(),
		thumbs: testutil.NewFakeThumbnailer(),
	}
	h.svc = catalog.NewService(h.db, h.fsmgr, h.exif, h.thumbs, catalog.NewNopLogger(),
		testutil.FixedClock(), catalog.UUIDGenerator{}, opts...)
	return h
}

// addRoot creates dir on the mock filesystem and registers it as a root.
func (h *harness) addRoot(t *testing.T, dir string) *model.Directory {
	t.Helper()
	h.fsmgr.AddDirectory(dir)
	root, err := h.svc.AddRoot(h.fsmgr.MustResolve(dir))
	if err != nil {
		t.Fatalf("AddRoot() error = %v", err)
	}
	return root
}

// addImage creates a media file with raw tags.
func (h *harness) addImage(path string, tags metadata.RawTags) {
	h.fsmgr.AddFile(path, []byte("data"))
	h.exif.SetTags(path, tags)
}

func (h *harness) scan(t *testing.T, dir string, reload bool) *catalog.ScanStats {
	t.Helper()
	stats, err := h.svc.Scan(h.fsmgr.MustResolve(dir), reload)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return stats
}

func (h *harness) image(t *testing.T, path string) *model.Image {
	t.Helper()
	img, err := h.svc.ImageForPath(path)
	if err != nil {
		t.Fatalf("ImageForPath(%s) error = %v", path, err)
	}
	if img == nil {
		t.Fatalf("image %s is not cataloged", path)
	}
	return img
}

// completeTags returns raw tags that satisfy the write-back completeness check.
func completeTags() metadata.RawTags {
	return metadata.RawTags{
		metadata.KeyDateTimeOriginal:    "2023:06:01 14:00:00",
		metadata.KeyOffsetTimeOriginal:  "+02:00",
		metadata.KeyArtist:              "Jane Doe",
		metadata.KeyHierarchicalSubject: []any{"Categories|Travel", "Places|France|Paris"},
		metadata.KeyRating:              float64(3),
	}
}
