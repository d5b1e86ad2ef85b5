package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

// SkippedFile is a file that write-back left untouched.
type SkippedFile struct {
	Path   string
	Reason string
}

// WriteReport summarizes a write-back run.
type WriteReport struct {
	Written int
	Skipped []SkippedFile
}

// WriteMetadata writes the catalog metadata of every image in a directory,
// and of their attachments, back into the files.
func (s *Service) WriteMetadata(path *Path) (*WriteReport, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	return s.writeImages(images)
}

// WriteMetadataForImages is WriteMetadata for an explicit set of images.
func (s *Service) WriteMetadataForImages(ids []string) (*WriteReport, error) {
	images, err := s.loadImages(ids)
	if err != nil {
		return nil, err
	}
	return s.writeImages(images)
}

// writeImages refuses to touch any file unless every image is complete.
// Files are then written with one session per directory; a failing file
// does not stop its siblings.
func (s *Service) writeImages(images []*model.Image) (*WriteReport, error) {
	incomplete, err := s.incomplete(images)
	if err != nil {
		return nil, err
	}
	if len(incomplete) > 0 {
		return nil, &MetadataIncompleteError{Entries: incomplete}
	}

	var order []string
	byDir := map[string][]*model.Image{}
	for _, img := range images {
		if _, ok := byDir[img.DirectoryID]; !ok {
			order = append(order, img.DirectoryID)
		}
		byDir[img.DirectoryID] = append(byDir[img.DirectoryID], img)
	}

	report := &WriteReport{}
	var errs []error
	for _, dirID := range order {
		if err := s.writeDirectory(dirID, byDir[dirID], report); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info("metadata written", "files", report.Written, "skipped", len(report.Skipped))
	return report, errors.Join(errs...)
}

func (s *Service) writeDirectory(dirID string, images []*model.Image, report *WriteReport) error {
	dir, err := s.database.FindDirectoryByID(dirID)
	if err != nil {
		return fmt.Errorf("finding directory: %w", err)
	}
	if dir == nil {
		return fmt.Errorf("directory %s not found", dirID)
	}
	absPath, err := s.AbsolutePath(dir)
	if err != nil {
		return err
	}

	writer, err := s.exif.OpenWriter(absPath)
	if err != nil {
		return fmt.Errorf("opening writer for %s: %w", absPath, err)
	}

	var errs []error
	for _, img := range images {
		md, err := s.imageMetadata(img)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		files := []string{img.Filename}
		attachments, err := s.database.FindAttachmentsByImage(img.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("finding attachments: %w", err))
			continue
		}
		for _, a := range attachments {
			files = append(files, a.Filename)
		}

		for _, name := range files {
			filePath := filepath.Join(absPath, name)
			params, err := s.serializers.Serialize(filepath.Ext(name), md)
			if errors.Is(err, metadata.ErrUnsupportedExtension) {
				s.logger.Warn("metadata not written", "path", filePath, "error", err)
				report.Skipped = append(report.Skipped, SkippedFile{Path: filePath, Reason: err.Error()})
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("serializing %s: %w", filePath, err))
				continue
			}
			if len(params) == 0 {
				continue
			}
			if err := writer.WriteTags(name, params); err != nil {
				s.logger.Error("writing metadata failed", "path", filePath, "error", err)
				errs = append(errs, fmt.Errorf("writing %s: %w", filePath, err))
				continue
			}
			report.Written++
		}
	}

	if err := writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing writer for %s: %w", absPath, err))
	}
	return errors.Join(errs...)
}
