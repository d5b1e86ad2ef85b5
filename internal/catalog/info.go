package catalog

import (
	"fmt"

	"photocat/internal/model"
)

// ImageInfo is an image with its related rows resolved for display.
type ImageInfo struct {
	Image       *model.Image
	Path        string
	Author      string
	CameraKey   string
	Tags        []string
	Attachments []*model.Attachment
	Missing     []MissingFacet
}

// ListImages returns the images cataloged directly inside a directory.
func (s *Service) ListImages(path *Path) ([]*model.Image, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	return images, nil
}

// ListSubdirectories returns the cataloged subdirectories of a directory.
func (s *Service) ListSubdirectories(path *Path) ([]*model.Directory, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	dirs, err := s.database.FindChildDirectories(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding subdirectories: %w", err)
	}
	return dirs, nil
}

// GetImageInfo returns the image cataloged at path with its related rows.
func (s *Service) GetImageInfo(path *Path) (*ImageInfo, error) {
	img, err := s.ImageForPath(path.String())
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("image is not cataloged: %s", path.String())
	}

	info := &ImageInfo{Image: img, Path: path.String()}
	if img.AuthorID.Valid {
		author, err := s.database.FindAuthorByID(img.AuthorID.String)
		if err != nil {
			return nil, fmt.Errorf("finding author: %w", err)
		}
		if author != nil {
			info.Author = author.Name
		}
	}
	if img.CameraID.Valid {
		cam, err := s.database.FindCameraByID(img.CameraID.String)
		if err != nil {
			return nil, fmt.Errorf("finding camera: %w", err)
		}
		if cam != nil {
			info.CameraKey = cam.Key
		}
	}
	if info.Tags, err = s.imageTagNames(img.ID); err != nil {
		return nil, err
	}
	if info.Attachments, err = s.database.FindAttachmentsByImage(img.ID); err != nil {
		return nil, fmt.Errorf("finding attachments: %w", err)
	}
	if info.Missing, err = s.missingFacets(img); err != nil {
		return nil, err
	}
	return info, nil
}

// ResolveImageIDs maps absolute file paths to cataloged image IDs.
func (s *Service) ResolveImageIDs(paths []string) ([]string, error) {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		img, err := s.ImageForPath(p)
		if err != nil {
			return nil, err
		}
		if img == nil {
			return nil, fmt.Errorf("image is not cataloged: %s", p)
		}
		ids = append(ids, img.ID)
	}
	return ids, nil
}
