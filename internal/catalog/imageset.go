package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

// loadImages returns the images for ids in the given order. Unknown IDs are
// an error so that a batch never applies to a partial set.
func (s *Service) loadImages(ids []string) ([]*model.Image, error) {
	found, err := s.database.FindImagesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	byID := make(map[string]*model.Image, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}
	images := make([]*model.Image, 0, len(ids))
	for _, id := range ids {
		img, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("image not found: %s", id)
		}
		images = append(images, img)
	}
	return images, nil
}

// updateImages applies fn to every image and saves each changed row with a
// single statement. It returns how many rows changed.
func (s *Service) updateImages(ids []string, fn func(img *model.Image) bool) (int, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, img := range images {
		if !fn(img) {
			continue
		}
		if err := s.database.UpdateImage(img); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func validateOffsetMinutes(minutes int) error {
	if abs(minutes*60) > maxOffsetSeconds {
		return fmt.Errorf("offset out of range: %d minutes", minutes)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// OverwriteTimezone keeps the local wall clock of each image and declares it
// to be at offsetMinutes, recomputing the UTC instant.
func (s *Service) OverwriteTimezone(ids []string, offsetMinutes int) (int, error) {
	if err := validateOffsetMinutes(offsetMinutes); err != nil {
		return 0, err
	}
	offset := offsetMinutes * 60
	return s.updateImages(ids, func(img *model.Image) bool {
		wall, ok := wallClock(img)
		if !ok {
			return false
		}
		img.DateTimeUTC.Time = wall.Add(-time.Duration(offset) * time.Second)
		img.TZOffset = sql.NullInt64{Int64: int64(offset), Valid: true}
		return true
	})
}

// TranslateTimezone keeps the UTC instant and moves the offset by
// deltaMinutes. Images without an offset are skipped.
func (s *Service) TranslateTimezone(ids []string, deltaMinutes int) (int, error) {
	if err := validateOffsetMinutes(deltaMinutes); err != nil {
		return 0, err
	}
	images, err := s.loadImages(ids)
	if err != nil {
		return 0, err
	}
	for _, img := range images {
		if img.TZOffset.Valid && abs(int(img.TZOffset.Int64)+deltaMinutes*60) > maxOffsetSeconds {
			return 0, fmt.Errorf("offset of %s would leave the valid range", img.Filename)
		}
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		if !img.DateTimeUTC.Valid || !img.TZOffset.Valid {
			return false
		}
		img.TZOffset.Int64 += int64(deltaMinutes * 60)
		return true
	})
}

// NamedTimezone places each image's local wall clock in the IANA zone,
// using the offset in effect at that moment.
func (s *Service) NamedTimezone(ids []string, zone string) (int, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0, fmt.Errorf("loading time zone: %w", err)
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		wall, ok := wallClock(img)
		if !ok {
			return false
		}
		local := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
		_, offset := local.Zone()
		img.DateTimeUTC.Time = local.UTC()
		img.TZOffset = sql.NullInt64{Int64: int64(offset), Valid: true}
		return true
	})
}

// ShiftTime moves the capture instant of each image, keeping its offset.
func (s *Service) ShiftTime(ids []string, minutes int) (int, error) {
	return s.updateImages(ids, func(img *model.Image) bool {
		if !img.DateTimeUTC.Valid {
			return false
		}
		img.DateTimeUTC.Time = img.DateTimeUTC.Time.Add(time.Duration(minutes) * time.Minute)
		return true
	})
}

// SetAuthor credits the images to name, creating the author if needed.
// An empty name clears the author.
func (s *Service) SetAuthor(ids []string, name string) (int, error) {
	var authorID sql.NullString
	if name != "" {
		author, err := s.findOrCreateAuthor(name)
		if err != nil {
			return 0, err
		}
		authorID = sql.NullString{String: author.ID, Valid: true}
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		img.AuthorID = authorID
		return true
	})
}

// SetCamera assigns the camera registered under key. An empty key clears it.
func (s *Service) SetCamera(ids []string, key string) (int, error) {
	var cameraID sql.NullString
	if key != "" {
		cam, err := s.database.FindCameraByKey(key)
		if err != nil {
			return 0, fmt.Errorf("finding camera: %w", err)
		}
		if cam == nil {
			return 0, fmt.Errorf("unknown camera: %s", key)
		}
		cameraID = sql.NullString{String: cam.ID, Valid: true}
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		img.CameraID = cameraID
		return true
	})
}

// SetRating sets a star rating between 0 and 5.
func (s *Service) SetRating(ids []string, rating int) (int, error) {
	if rating < 0 || rating > 5 {
		return 0, fmt.Errorf("rating out of range: %d", rating)
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		img.Rating = int64(rating)
		return true
	})
}

// SetPickLabel sets the pick label; "" or "none" clears it.
func (s *Service) SetPickLabel(ids []string, label string) (int, error) {
	value, err := labelValue(label, metadata.ValidPickLabel)
	if err != nil {
		return 0, fmt.Errorf("invalid pick label %q", label)
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		img.PickLabel = value
		return true
	})
}

// SetColorLabel sets the color label; "" or "none" clears it.
func (s *Service) SetColorLabel(ids []string, label string) (int, error) {
	value, err := labelValue(label, metadata.ValidColorLabel)
	if err != nil {
		return 0, fmt.Errorf("invalid color label %q", label)
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		img.ColorLabel = value
		return true
	})
}

func labelValue(label string, valid func(string) bool) (sql.NullString, error) {
	if label == "" || label == "none" {
		return sql.NullString{}, nil
	}
	if !valid(label) {
		return sql.NullString{}, fmt.Errorf("invalid label")
	}
	return sql.NullString{String: label, Valid: true}, nil
}

// SetTags replaces the tag set of each image. An empty list clears it.
func (s *Service) SetTags(ids []string, paths []string) (int, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return 0, err
	}
	tagIDs, err := s.tags.ResolveAll(paths)
	if err != nil {
		return 0, err
	}
	for i, img := range images {
		if err := s.database.SetImageTags(img.ID, tagIDs); err != nil {
			return i, err
		}
	}
	return len(images), nil
}

// SetCoordinates sets a fixed position. Images that already have one are
// kept unless overwrite is set.
func (s *Service) SetCoordinates(ids []string, lat, lon float64, alt *float64, overwrite bool) (int, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, fmt.Errorf("coordinates out of range: %f, %f", lat, lon)
	}
	return s.updateImages(ids, func(img *model.Image) bool {
		if hasGPS(img) && !overwrite {
			return false
		}
		img.GPSLatitude = sql.NullFloat64{Float64: lat, Valid: true}
		img.GPSLongitude = sql.NullFloat64{Float64: lon, Valid: true}
		img.GPSAltitude = nullFloat(alt)
		return true
	})
}

func hasGPS(img *model.Image) bool {
	return img.GPSLatitude.Valid && img.GPSLongitude.Valid
}

// RemoveFromCatalog deletes the images and their attachments from the
// catalog. Files on disk are kept.
func (s *Service) RemoveFromCatalog(ids []string) (int, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return 0, err
	}
	for i, img := range images {
		if err := s.database.DeleteImage(img.ID); err != nil {
			return i, err
		}
	}
	s.logger.Info("images removed from catalog", "count", len(images))
	return len(images), nil
}
