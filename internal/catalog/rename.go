package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"photocat/internal/camera"
	"photocat/internal/model"
)

// RenameConflict is an image whose target name is already taken.
type RenameConflict struct {
	Path   string
	Target string
}

// RenameReport summarizes a rename run.
type RenameReport struct {
	Renamed   int
	Unchanged int
	Skipped   int
	Conflicts []RenameConflict
}

// RenameFiles gives every image of a directory that has a camera and a
// capture time the standard name "<YYYYMMDD>_<camera key>_<number><ext>",
// moving its attachments along. Existing files are never overwritten.
func (s *Service) RenameFiles(path *Path) (*RenameReport, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}

	sort.SliceStable(images, func(i, j int) bool {
		ti, tj := images[i].DateTimeUTC.Time, images[j].DateTimeUTC.Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return images[i].Filename < images[j].Filename
	})

	profiles := map[string]*camera.Profile{}
	indices := map[string]int{}
	report := &RenameReport{}

	for _, img := range images {
		local, ok := wallClock(img)
		if !ok || !img.CameraID.Valid {
			report.Skipped++
			continue
		}
		profile, ok := profiles[img.CameraID.String]
		if !ok {
			cam, err := s.database.FindCameraByID(img.CameraID.String)
			if err != nil {
				return report, fmt.Errorf("finding camera: %w", err)
			}
			if cam == nil {
				report.Skipped++
				continue
			}
			profile = cameraProfile(cam)
			profiles[cam.ID] = profile
		}

		group := local.Format("20060102") + "_" + profile.Key
		index := indices[group]
		indices[group]++

		original := img.Filename
		if img.OriginalFilename.Valid && img.OriginalFilename.String != "" {
			original = img.OriginalFilename.String
		}
		target := camera.TargetName(local, profile, original, img.Filename, index)
		if target == img.Filename {
			report.Unchanged++
			continue
		}

		err := s.renameImage(path.String(), img, target)
		if errors.Is(err, ErrFileExists) {
			s.logger.Warn("rename target exists", "path", filepath.Join(path.String(), img.Filename), "target", target)
			report.Conflicts = append(report.Conflicts, RenameConflict{Path: filepath.Join(path.String(), img.Filename), Target: target})
			continue
		}
		if err != nil {
			return report, err
		}
		report.Renamed++
	}

	s.logger.Info("rename complete", "path", path.String(), "renamed", report.Renamed, "conflicts", len(report.Conflicts))
	return report, nil
}

// renameImage renames the image file first; attachments follow with the
// same base name and their own suffix.
func (s *Service) renameImage(dirPath string, img *model.Image, target string) error {
	oldBase := baseName(img.Filename)
	newBase := baseName(target)

	if err := s.fsmgr.Rename(filepath.Join(dirPath, img.Filename), filepath.Join(dirPath, target)); err != nil {
		return fmt.Errorf("renaming %s: %w", img.Filename, err)
	}
	if !img.OriginalFilename.Valid || img.OriginalFilename.String == "" {
		img.OriginalFilename.String = img.Filename
		img.OriginalFilename.Valid = true
	}
	img.Filename = target
	if err := s.database.UpdateImage(img); err != nil {
		return err
	}

	attachments, err := s.database.FindAttachmentsByImage(img.ID)
	if err != nil {
		return fmt.Errorf("finding attachments: %w", err)
	}
	for _, a := range attachments {
		if !strings.HasPrefix(a.Filename, oldBase) {
			continue
		}
		newName := newBase + strings.TrimPrefix(a.Filename, oldBase)
		if err := s.fsmgr.Rename(filepath.Join(dirPath, a.Filename), filepath.Join(dirPath, newName)); err != nil {
			s.logger.Error("renaming attachment failed", "path", filepath.Join(dirPath, a.Filename), "error", err)
			continue
		}
		a.Filename = newName
		if err := s.database.UpdateAttachment(a); err != nil {
			return err
		}
	}
	return nil
}
