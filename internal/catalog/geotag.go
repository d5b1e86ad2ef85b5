package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"photocat/internal/model"
	"photocat/internal/track"
)

// GeotagReport summarizes a geotag batch.
type GeotagReport struct {
	Tagged    int
	Unmatched int
	Skipped   int
}

// Geotag positions images by interpolating their capture time along the
// given GPS track files. Images that already have a position are skipped
// unless overwrite is set. Every remaining image must have a capture time
// with a known offset, otherwise nothing is changed and a
// GeotagPreconditionError names each offender.
func (s *Service) Geotag(ctx context.Context, ids []string, trackFiles []string, overwrite bool) (*GeotagReport, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return nil, err
	}

	report := &GeotagReport{}
	var targets []*model.Image
	var violations []GeotagViolation
	for _, img := range images {
		if hasGPS(img) && !overwrite {
			report.Skipped++
			continue
		}
		if _, ok := captureInstant(img); !ok {
			reason := "capture time has no timezone offset"
			if !img.DateTimeUTC.Valid {
				reason = "capture time unknown"
			}
			path, err := s.imagePath(img)
			if err != nil {
				return nil, err
			}
			violations = append(violations, GeotagViolation{ImageID: img.ID, Path: path, Reason: reason})
			continue
		}
		targets = append(targets, img)
	}
	if len(violations) > 0 {
		return nil, &GeotagPreconditionError{Entries: violations}
	}

	sections, err := s.loadSections(ctx, trackFiles)
	if err != nil {
		return nil, err
	}

	for _, img := range targets {
		instant, _ := captureInstant(img)
		res := s.geotagger.Geotag(instant, sections)
		if !res.Found() {
			report.Unmatched++
			continue
		}
		img.GPSLongitude = sql.NullFloat64{Float64: *res.Longitude, Valid: true}
		img.GPSLatitude = sql.NullFloat64{Float64: *res.Latitude, Valid: true}
		img.GPSAltitude = nullFloat(res.Altitude)
		if err := s.database.UpdateImage(img); err != nil {
			return report, err
		}
		report.Tagged++
	}

	s.logger.Info("geotag complete", "tagged", report.Tagged, "unmatched", report.Unmatched, "skipped", report.Skipped)
	return report, nil
}

// loadSections parses the track files concurrently and returns all of their
// sections in file order. Files with an unknown extension are skipped.
func (s *Service) loadSections(ctx context.Context, files []string) ([]track.Section, error) {
	tracks := make([]*track.Track, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.trackWorkers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := s.tracks.ParseFile(f)
			if err != nil {
				return err
			}
			tracks[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading tracks: %w", err)
	}

	var sections []track.Section
	for i, t := range tracks {
		if t == nil {
			s.logger.Warn("not a track file", "path", files[i])
			continue
		}
		if len(t.Sections) == 0 {
			s.logger.Warn("track file has no sections", "path", files[i])
		}
		sections = append(sections, t.Sections...)
	}
	return sections, nil
}
