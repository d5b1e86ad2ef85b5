package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"photocat/internal/catalog"
	"photocat/internal/metadata"
	"photocat/internal/testutil"
)

const testGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Walk</name>
    <trkseg>
      <trkpt lat="48.0" lon="2.0"><ele>100</ele><time>2023-06-01T11:50:00Z</time></trkpt>
      <trkpt lat="49.0" lon="3.0"><ele>200</ele><time>2023-06-01T12:10:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func writeTrack(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing track: %v", err)
	}
	return path
}

func TestService_Geotag(t *testing.T) {
	t.Run("interpolates along the track", func(t *testing.T) {
		h := newHarness(t)
		h.addRoot(t, "/lib")
		h.addImage("/lib/a.jpg", metadata.RawTags{
			metadata.KeyDateTimeOriginal:   "2023:06:01 14:00:00",
			metadata.KeyOffsetTimeOriginal: "+02:00",
		})
		h.addImage("/lib/late.jpg", metadata.RawTags{
			metadata.KeyDateTimeOriginal:   "2023:06:01 18:00:00",
			metadata.KeyOffsetTimeOriginal: "+02:00",
		})
		h.scan(t, "/lib", false)
		ids, _ := h.svc.ResolveImageIDs([]string{"/lib/a.jpg", "/lib/late.jpg"})

		report, err := h.svc.Geotag(context.Background(), ids, []string{writeTrack(t, "walk.gpx", testGPX)}, false)
		if err != nil {
			t.Fatalf("Geotag() error = %v", err)
		}
		if report.Tagged != 1 || report.Unmatched != 1 {
			t.Errorf("report = %+v, want 1 tagged and 1 unmatched", *report)
		}

		img := h.image(t, "/lib/a.jpg")
		if img.GPSLatitude.Float64 != 48.5 || img.GPSLongitude.Float64 != 2.5 || img.GPSAltitude.Float64 != 150 {
			t.Errorf("position = %v %v %v, want 48.5 2.5 150", img.GPSLatitude, img.GPSLongitude, img.GPSAltitude)
		}
		if h.image(t, "/lib/late.jpg").GPSLatitude.Valid {
			t.Error("image outside the track was tagged")
		}
	})

	t.Run("names every image without offset", func(t *testing.T) {
		h := newHarness(t)
		h.addRoot(t, "/lib")
		h.addImage("/lib/a.jpg", metadata.RawTags{metadata.KeyDateTimeOriginal: "2023:06:01 14:00:00"})
		h.addImage("/lib/b.jpg", nil)
		h.addImage("/lib/c.jpg", metadata.RawTags{
			metadata.KeyDateTimeOriginal:   "2023:06:01 14:00:00",
			metadata.KeyOffsetTimeOriginal: "+02:00",
		})
		h.scan(t, "/lib", false)
		ids, _ := h.svc.ResolveImageIDs([]string{"/lib/a.jpg", "/lib/b.jpg", "/lib/c.jpg"})

		_, err := h.svc.Geotag(context.Background(), ids, []string{writeTrack(t, "walk.gpx", testGPX)}, false)

		var precondition *catalog.GeotagPreconditionError
		if !errors.As(err, &precondition) {
			t.Fatalf("Geotag() error = %v, want GeotagPreconditionError", err)
		}
		if len(precondition.Entries) != 2 {
			t.Errorf("violations = %+v, want 2", precondition.Entries)
		}
		if h.image(t, "/lib/c.jpg").GPSLatitude.Valid {
			t.Error("valid image was tagged despite the failed precondition")
		}
	})

	t.Run("keeps existing positions unless overwriting", func(t *testing.T) {
		h := newHarness(t)
		h.addRoot(t, "/lib")
		tags := metadata.RawTags{
			metadata.KeyDateTimeOriginal:   "2023:06:01 14:00:00",
			metadata.KeyOffsetTimeOriginal: "+02:00",
			metadata.KeyGPSLatitude:        10.0,
			metadata.KeyGPSLongitude:       20.0,
		}
		h.addImage("/lib/a.jpg", tags)
		h.scan(t, "/lib", false)
		ids, _ := h.svc.ResolveImageIDs([]string{"/lib/a.jpg"})
		gpx := writeTrack(t, "walk.gpx", testGPX)

		report, err := h.svc.Geotag(context.Background(), ids, []string{gpx}, false)
		if err != nil {
			t.Fatalf("Geotag() error = %v", err)
		}
		if report.Skipped != 1 || h.image(t, "/lib/a.jpg").GPSLatitude.Float64 != 10 {
			t.Errorf("existing position changed: %+v", *report)
		}

		if _, err := h.svc.Geotag(context.Background(), ids, []string{gpx}, true); err != nil {
			t.Fatalf("Geotag() error = %v", err)
		}
		if h.image(t, "/lib/a.jpg").GPSLatitude.Float64 != 48.5 {
			t.Error("overwrite did not replace the position")
		}
	})

	t.Run("malformed track fails before any change", func(t *testing.T) {
		h := newHarness(t)
		h.addRoot(t, "/lib")
		h.addImage("/lib/a.jpg", metadata.RawTags{
			metadata.KeyDateTimeOriginal:   "2023:06:01 14:00:00",
			metadata.KeyOffsetTimeOriginal: "+02:00",
		})
		h.scan(t, "/lib", false)
		ids, _ := h.svc.ResolveImageIDs([]string{"/lib/a.jpg"})
		tracks := []string{writeTrack(t, "walk.gpx", testGPX), writeTrack(t, "broken.gpx", `<gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="north" lon="2.0">`)}

		if _, err := h.svc.Geotag(context.Background(), ids, tracks, false); err == nil {
			t.Fatal("Geotag() expected parse error")
		}
		if h.image(t, "/lib/a.jpg").GPSLatitude.Valid {
			t.Error("image was tagged despite the parse error")
		}
	})
}

func TestService_Tracks(t *testing.T) {
	h := newHarness(t)
	path := writeTrack(t, "walk.gpx", testGPX)
	dir := filepath.Dir(path)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	h.fsmgr.AddFile(path, []byte(testGPX))
	h.fsmgr.AddFile(filepath.Join(dir, "notes.txt"), nil)

	summaries, err := h.svc.Tracks(h.fsmgr.MustResolve(dir))
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Tracks() = %d summaries, want 1", len(summaries))
	}
	s := summaries[0]
	if s.Name != "Walk" || len(s.Sections) != 1 || s.Sections[0].Fixes != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.Sections[0].Name != "Walk_1" {
		t.Errorf("section name = %s, want Walk_1", s.Sections[0].Name)
	}
}

type warnLogger struct {
	catalog.NopLogger
	warnings []string
}

func (l *warnLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

func TestService_TracksWithoutSections(t *testing.T) {
	// A GPX 1.0 style document outside the topografix namespace.
	doc := `<gpx version="1.0"><trk><name>Old</name><trkseg><trkpt lat="1" lon="2"><time>2023-06-01T12:00:00Z</time></trkpt></trkseg></trk></gpx>`
	path := writeTrack(t, "old.gpx", doc)

	h := newHarness(t)
	logger := &warnLogger{}
	h.svc = catalog.NewService(h.db, h.fsmgr, h.exif, h.thumbs, logger,
		testutil.FixedClock(), catalog.UUIDGenerator{})
	h.fsmgr.AddFile(path, []byte(doc))

	summaries, err := h.svc.Tracks(h.fsmgr.MustResolve(filepath.Dir(path)))
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(summaries) != 1 || len(summaries[0].Sections) != 0 {
		t.Fatalf("Tracks() = %+v, want one track without sections", summaries)
	}
	if !slices.Contains(logger.warnings, "track file has no sections") {
		t.Errorf("warnings = %v, want empty track warning", logger.warnings)
	}

	h.addRoot(t, "/lib")
	h.addImage("/lib/a.jpg", metadata.RawTags{
		metadata.KeyDateTimeOriginal:   "2023:06:01 14:00:00",
		metadata.KeyOffsetTimeOriginal: "+02:00",
	})
	h.scan(t, "/lib", false)
	ids, err := h.svc.ResolveImageIDs([]string{"/lib/a.jpg"})
	if err != nil {
		t.Fatalf("ResolveImageIDs() error = %v", err)
	}

	logger.warnings = nil
	report, err := h.svc.Geotag(context.Background(), ids, []string{path}, false)
	if err != nil {
		t.Fatalf("Geotag() error = %v", err)
	}
	if report.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", report.Unmatched)
	}
	if !slices.Contains(logger.warnings, "track file has no sections") {
		t.Errorf("warnings = %v, want empty track warning", logger.warnings)
	}
}
