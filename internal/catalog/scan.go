package catalog

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

// ScanStats counts what a scan added to the catalog.
type ScanStats struct {
	Directories int
	Images      int
	Attachments int
}

// Scan synchronizes the catalog below path with the filesystem. Existing
// entries are kept as they are; only new files and directories are added.
// With reload, the images and subdirectories of path itself are dropped and
// cataloged again.
func (s *Service) Scan(path *Path, reload bool) (*ScanStats, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	if err := s.ReloadCameras(); err != nil {
		return nil, err
	}

	stats := &ScanStats{}
	if err := s.scanDirectory(dir, path.String(), reload, stats); err != nil {
		return stats, err
	}

	s.logger.Info("scan complete", "path", path.String(),
		"directories", stats.Directories, "images", stats.Images, "attachments", stats.Attachments)
	return stats, nil
}

// scanDirectory catalogs one directory level and then descends depth-first.
// reload only applies to the first level.
func (s *Service) scanDirectory(dir *model.Directory, absPath string, reload bool, stats *ScanStats) error {
	start := s.clock.Now()

	if reload {
		if err := s.database.DeleteDirectoryContents(dir.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", absPath, err)
		}
	}

	entries, err := s.fsmgr.ListDir(absPath)
	if err != nil {
		return fmt.Errorf("listing %s: %w", absPath, err)
	}

	existingImages, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return fmt.Errorf("finding images: %w", err)
	}
	knownImages := make(map[string]bool, len(existingImages))
	for _, img := range existingImages {
		knownImages[img.Filename] = true
	}

	existingDirs, err := s.database.FindChildDirectories(dir.ID)
	if err != nil {
		return fmt.Errorf("finding subdirectories: %w", err)
	}
	knownDirs := make(map[string]bool, len(existingDirs))
	for _, d := range existingDirs {
		knownDirs[d.Name] = true
	}

	var newMedia, attachmentNames []string
	var newDirs []*model.Directory
	onDisk := map[string]bool{}
	for _, e := range entries {
		switch s.classify(e) {
		case KindMedia:
			if !knownImages[e.Name] {
				newMedia = append(newMedia, e.Name)
			}
		case KindAttachment:
			attachmentNames = append(attachmentNames, e.Name)
		case KindDirectory:
			onDisk[e.Name] = true
			if !knownDirs[e.Name] {
				newDirs = append(newDirs, &model.Directory{
					ParentID: sql.NullString{String: dir.ID, Valid: true},
					Name:     e.Name,
				})
			}
		}
	}

	images, imageTags, err := s.loadNewImages(dir, absPath, newMedia)
	if err != nil {
		return err
	}

	if len(newDirs) > 0 || len(images) > 0 {
		if err := s.database.CreateScanBatch(newDirs, images, imageTags); err != nil {
			return fmt.Errorf("saving %s: %w", absPath, err)
		}
	}
	stats.Directories += len(newDirs)
	stats.Images += len(images)

	for _, img := range images {
		s.submitThumbnail(img, filepath.Join(absPath, img.Filename))
	}

	added, err := s.pairAttachments(dir, attachmentNames)
	if err != nil {
		return err
	}
	stats.Attachments += added

	s.logger.Debug("directory scanned", "path", absPath, "images", len(images),
		"attachments", added, "elapsed", s.clock.Now().Sub(start).Round(time.Millisecond).String())

	children, err := s.database.FindChildDirectories(dir.ID)
	if err != nil {
		return fmt.Errorf("finding subdirectories: %w", err)
	}
	for _, child := range children {
		if !onDisk[child.Name] {
			s.logger.Warn("cataloged directory missing on disk", "path", filepath.Join(absPath, child.Name))
			continue
		}
		if err := s.scanDirectory(child, filepath.Join(absPath, child.Name), false, stats); err != nil {
			return err
		}
	}
	return nil
}

// loadNewImages reads the raw tags of every new media file in one batch and
// builds the catalog rows. No row is built unless every record matches the
// file it was requested for.
func (s *Service) loadNewImages(dir *model.Directory, absPath string, names []string) ([]*model.Image, map[string][]string, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}

	records, err := s.exif.ReadTags(absPath, names)
	if err != nil {
		return nil, nil, fmt.Errorf("reading metadata in %s: %w", absPath, err)
	}
	if len(records) != len(names) {
		return nil, nil, fmt.Errorf("reading metadata in %s: got %d records for %d files", absPath, len(records), len(names))
	}
	for i, rec := range records {
		if filepath.Base(rec.SourceFile()) != names[i] {
			return nil, nil, &IdentityMismatchError{Directory: absPath, Filename: names[i], SourceFile: rec.SourceFile()}
		}
	}

	placeholder, err := s.thumbs.Placeholder()
	if err != nil {
		s.logger.Warn("placeholder thumbnail unavailable", "error", err)
	}

	images := make([]*model.Image, 0, len(names))
	imageTags := map[string][]string{}
	for i, rec := range records {
		md := s.extractor.Extract(rec)

		img := &model.Image{
			ID:          s.idgen.New(),
			DirectoryID: dir.ID,
			Filename:    names[i],
		}
		if err := s.applyMetadata(img, md); err != nil {
			return nil, nil, fmt.Errorf("loading metadata of %s: %w", names[i], err)
		}
		if placeholder != "" {
			img.ThumbnailRef = sql.NullString{String: placeholder, Valid: true}
		}

		if len(md.Tags) > 0 {
			ids, err := s.tags.ResolveAll(md.Tags)
			if err != nil {
				return nil, nil, fmt.Errorf("resolving tags of %s: %w", names[i], err)
			}
			imageTags[img.ID] = ids
		}
		images = append(images, img)
	}
	return images, imageTags, nil
}

// applyMetadata copies extracted metadata onto a new image row.
func (s *Service) applyMetadata(img *model.Image, md metadata.Metadata) error {
	setTimestamp(img, md.DateTime)

	if md.Author != nil && *md.Author != "" {
		author, err := s.findOrCreateAuthor(*md.Author)
		if err != nil {
			return err
		}
		img.AuthorID = sql.NullString{String: author.ID, Valid: true}
	}

	if p := s.cameras.Match(md.CameraMake, md.CameraModel, md.CameraSerial); p != nil {
		img.CameraID = sql.NullString{String: p.ID, Valid: true}
	}

	if md.HasGPS() {
		img.GPSLatitude = nullFloat(md.GPSLatitude)
		img.GPSLongitude = nullFloat(md.GPSLongitude)
		img.GPSAltitude = nullFloat(md.GPSAltitude)
	}
	if md.Rating != nil {
		img.Rating = int64(*md.Rating)
	}
	img.PickLabel = nullString(md.PickLabel)
	img.ColorLabel = nullString(md.ColorLabel)
	img.OriginalFilename = nullString(md.OriginalFilename)
	return nil
}

func (s *Service) submitThumbnail(img *model.Image, path string) {
	id := img.ID
	s.thumbs.Submit(id, path, func(ref string) error {
		return s.database.UpdateImageThumbnail(id, ref)
	})
}

// pairAttachments links attachment files to the image sharing their base
// name. Names already attached are skipped.
func (s *Service) pairAttachments(dir *model.Directory, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return 0, fmt.Errorf("finding images: %w", err)
	}
	byBase := map[string]*model.Image{}
	for _, img := range images {
		if _, ok := byBase[baseName(img.Filename)]; !ok {
			byBase[baseName(img.Filename)] = img
		}
	}

	attached := map[string]map[string]bool{}
	var created []*model.Attachment
	for _, name := range names {
		img := byBase[baseName(name)]
		if img == nil {
			continue
		}
		if attached[img.ID] == nil {
			existing, err := s.database.FindAttachmentsByImage(img.ID)
			if err != nil {
				return 0, fmt.Errorf("finding attachments: %w", err)
			}
			attached[img.ID] = map[string]bool{}
			for _, a := range existing {
				attached[img.ID][a.Filename] = true
			}
		}
		if attached[img.ID][name] {
			continue
		}
		attached[img.ID][name] = true
		created = append(created, &model.Attachment{ImageID: img.ID, Filename: name, Kind: AttachmentKind(name)})
	}

	if len(created) == 0 {
		return 0, nil
	}
	if err := s.database.CreateAttachments(created); err != nil {
		return 0, fmt.Errorf("saving attachments: %w", err)
	}
	return len(created), nil
}
