package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"photocat/internal/model"
)

// Date directories are named after the local capture day.
const organizeLayout = "2006-01-02"

// OrganizeReport summarizes an organize run.
type OrganizeReport struct {
	Moved     int
	Skipped   int
	Conflicts []RenameConflict
	Scan      ScanStats
}

// Organize moves every image, with its attachments, into a subdirectory of
// its current directory named after the local capture date, then rescans the
// directories it moved images out of. Images without a capture time, and
// images already in a directory of the right name, stay where they are.
// Catalog rows move with their files, so edits are kept.
func (s *Service) Organize(ids []string) (*OrganizeReport, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return nil, err
	}

	report := &OrganizeReport{}
	dirs := map[string]*model.Directory{}
	dirPaths := map[string]string{}
	var touched []string

	for _, img := range images {
		local, ok := wallClock(img)
		if !ok {
			report.Skipped++
			continue
		}

		dir, ok := dirs[img.DirectoryID]
		if !ok {
			dir, err = s.database.FindDirectoryByID(img.DirectoryID)
			if err != nil {
				return report, fmt.Errorf("finding directory: %w", err)
			}
			if dir == nil {
				return report, fmt.Errorf("directory %s not found", img.DirectoryID)
			}
			dirPath, err := s.AbsolutePath(dir)
			if err != nil {
				return report, err
			}
			dirs[dir.ID] = dir
			dirPaths[dir.ID] = dirPath
		}

		name := local.Format(organizeLayout)
		if dir.Name == name {
			report.Skipped++
			continue
		}

		dirPath := dirPaths[dir.ID]
		target, err := s.childDirectory(dir, name)
		if err != nil {
			return report, err
		}
		targetPath := filepath.Join(dirPath, name)
		if err := s.fsmgr.MkdirAll(targetPath); err != nil {
			return report, fmt.Errorf("creating %s: %w", targetPath, err)
		}

		err = s.moveImage(dirPath, targetPath, img, target.ID)
		if errors.Is(err, ErrFileExists) {
			s.logger.Warn("organize target exists", "path", filepath.Join(dirPath, img.Filename), "target", targetPath)
			report.Conflicts = append(report.Conflicts, RenameConflict{
				Path:   filepath.Join(dirPath, img.Filename),
				Target: filepath.Join(targetPath, img.Filename),
			})
			continue
		}
		if err != nil {
			return report, err
		}
		report.Moved++
		if !slices.Contains(touched, dir.ID) {
			touched = append(touched, dir.ID)
		}
	}

	for _, id := range touched {
		if err := s.scanDirectory(dirs[id], dirPaths[id], false, &report.Scan); err != nil {
			return report, err
		}
	}

	s.logger.Info("organize complete", "images", len(images), "moved", report.Moved, "conflicts", len(report.Conflicts))
	return report, nil
}

// childDirectory returns the cataloged subdirectory name of dir, creating
// the row when it does not exist yet.
func (s *Service) childDirectory(dir *model.Directory, name string) (*model.Directory, error) {
	children, err := s.database.FindChildDirectories(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding subdirectories: %w", err)
	}
	for _, c := range children {
		if c.Name == name {
			return c, nil
		}
	}
	child := &model.Directory{
		ParentID: sql.NullString{String: dir.ID, Valid: true},
		Name:     name,
	}
	if err := s.database.CreateDirectory(child); err != nil {
		return nil, err
	}
	return child, nil
}

// moveImage moves the image file and then its attachments into targetPath
// and points the catalog row at targetID.
func (s *Service) moveImage(dirPath, targetPath string, img *model.Image, targetID string) error {
	if err := s.fsmgr.Rename(filepath.Join(dirPath, img.Filename), filepath.Join(targetPath, img.Filename)); err != nil {
		return fmt.Errorf("moving %s: %w", img.Filename, err)
	}
	img.DirectoryID = targetID
	if err := s.database.UpdateImage(img); err != nil {
		return err
	}

	attachments, err := s.database.FindAttachmentsByImage(img.ID)
	if err != nil {
		return fmt.Errorf("finding attachments: %w", err)
	}
	for _, a := range attachments {
		if err := s.fsmgr.Rename(filepath.Join(dirPath, a.Filename), filepath.Join(targetPath, a.Filename)); err != nil {
			s.logger.Error("moving attachment failed", "path", filepath.Join(dirPath, a.Filename), "error", err)
		}
	}
	return nil
}
