package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

// TrashRejected moves every rejected image of a directory, with its
// attachments, into the trash directory of the library root and removes it
// from the catalog.
func (s *Service) TrashRejected(path *Path) (int, error) {
	n, err := s.trashImages(path, func(img *model.Image) bool {
		return img.PickLabel.Valid && img.PickLabel.String == metadata.PickRejected
	})
	s.logger.Info("rejected images trashed", "path", path.String(), "count", n)
	return n, err
}

// TrashUnstarredVideos moves every video rated 0, with its attachments, into
// the trash directory and removes it from the catalog.
func (s *Service) TrashUnstarredVideos(path *Path) (int, error) {
	n, err := s.trashImages(path, func(img *model.Image) bool {
		return img.Rating == 0 && videoExtensions[strings.ToLower(filepath.Ext(img.Filename))]
	})
	s.logger.Info("unstarred videos trashed", "path", path.String(), "count", n)
	return n, err
}

// trashImages trashes the images of a directory selected by match. A failed
// move skips that image only.
func (s *Service) trashImages(path *Path, match func(img *model.Image) bool) (int, error) {
	dir, trash, err := s.trashFor(path)
	if err != nil {
		return 0, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return 0, fmt.Errorf("finding images: %w", err)
	}

	count := 0
	var errs []error
	for _, img := range images {
		if !match(img) {
			continue
		}
		if err := s.trashImage(path.String(), trash, img); err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

// TrashUnstarredRaws moves the RAW attachments of images rated 0 into the
// trash directory. The images themselves stay.
func (s *Service) TrashUnstarredRaws(path *Path) (int, error) {
	dir, trash, err := s.trashFor(path)
	if err != nil {
		return 0, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return 0, fmt.Errorf("finding images: %w", err)
	}

	count := 0
	var errs []error
	for _, img := range images {
		if img.Rating != 0 {
			continue
		}
		attachments, err := s.database.FindAttachmentsByImage(img.ID)
		if err != nil {
			return count, fmt.Errorf("finding attachments: %w", err)
		}
		for _, a := range attachments {
			if a.Kind != model.AttachmentRaw {
				continue
			}
			if err := s.moveToTrash(path.String(), trash, a.Filename); err != nil {
				errs = append(errs, err)
				continue
			}
			if err := s.database.DeleteAttachment(a.ID); err != nil {
				return count, err
			}
			count++
		}
	}

	s.logger.Info("unstarred raws trashed", "path", path.String(), "count", count)
	return count, errors.Join(errs...)
}

func (s *Service) trashFor(path *Path) (*model.Directory, string, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, "", err
	}
	root, err := s.rootOf(dir)
	if err != nil {
		return nil, "", err
	}
	trash := filepath.Join(root.Name, s.trashDir)
	if err := s.fsmgr.MkdirAll(trash); err != nil {
		return nil, "", fmt.Errorf("creating trash directory: %w", err)
	}
	return dir, trash, nil
}

func (s *Service) trashImage(dirPath, trash string, img *model.Image) error {
	attachments, err := s.database.FindAttachmentsByImage(img.ID)
	if err != nil {
		return fmt.Errorf("finding attachments: %w", err)
	}
	if err := s.moveToTrash(dirPath, trash, img.Filename); err != nil {
		return err
	}
	for _, a := range attachments {
		if err := s.moveToTrash(dirPath, trash, a.Filename); err != nil {
			s.logger.Error("trashing attachment failed", "path", filepath.Join(dirPath, a.Filename), "error", err)
		}
	}
	if err := s.database.DeleteImage(img.ID); err != nil {
		return err
	}
	return nil
}

func (s *Service) moveToTrash(dirPath, trash, name string) error {
	if err := s.fsmgr.Rename(filepath.Join(dirPath, name), filepath.Join(trash, name)); err != nil {
		return fmt.Errorf("trashing %s: %w", name, err)
	}
	return nil
}
