package catalog

import (
	"fmt"
	"strings"

	"photocat/internal/metadata"
	"photocat/internal/model"
)

// Tag roots checked for completeness.
const (
	CategoriesRoot = "Categories"
	PlacesRoot     = "Places"
)

// Check lists the images of a directory that are not ready for write-back.
func (s *Service) Check(path *Path) ([]Incomplete, error) {
	dir, err := s.requireDirectory(path)
	if err != nil {
		return nil, err
	}
	images, err := s.database.FindImagesByDirectory(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	return s.incomplete(images)
}

func (s *Service) incomplete(images []*model.Image) ([]Incomplete, error) {
	var result []Incomplete
	for _, img := range images {
		missing, err := s.missingFacets(img)
		if err != nil {
			return nil, err
		}
		if len(missing) == 0 {
			continue
		}
		path, err := s.imagePath(img)
		if err != nil {
			return nil, err
		}
		result = append(result, Incomplete{ImageID: img.ID, Path: path, Missing: missing})
	}
	return result, nil
}

// missingFacets returns every facet img lacks, in a stable order.
func (s *Service) missingFacets(img *model.Image) ([]MissingFacet, error) {
	var missing []MissingFacet
	if !img.DateTimeUTC.Valid {
		missing = append(missing, MissingTimestamp, MissingOffset)
	} else if !img.TZOffset.Valid {
		missing = append(missing, MissingOffset)
	}
	if !img.AuthorID.Valid {
		missing = append(missing, MissingAuthor)
	}

	names, err := s.imageTagNames(img.ID)
	if err != nil {
		return nil, err
	}
	categories, places := 0, 0
	for _, name := range names {
		root, _, nested := strings.Cut(name, "/")
		if !nested {
			continue
		}
		switch root {
		case CategoriesRoot:
			categories++
		case PlacesRoot:
			places++
		}
	}
	if categories == 0 {
		missing = append(missing, MissingCategory)
	}
	if places != 1 {
		missing = append(missing, MissingPlace)
	}
	return missing, nil
}

func (s *Service) imageTagNames(imageID string) ([]string, error) {
	ids, err := s.database.FindImageTagIDs(imageID)
	if err != nil {
		return nil, fmt.Errorf("finding image tags: %w", err)
	}
	return s.tags.FullNames(ids)
}

// imageMetadata rebuilds the canonical metadata of a cataloged image.
func (s *Service) imageMetadata(img *model.Image) (metadata.Metadata, error) {
	md := metadata.Metadata{
		DateTime:         imageTimestamp(img),
		PickLabel:        stringPtr(img.PickLabel),
		ColorLabel:       stringPtr(img.ColorLabel),
		OriginalFilename: stringPtr(img.OriginalFilename),
	}
	rating := int(img.Rating)
	md.Rating = &rating

	if img.GPSLatitude.Valid && img.GPSLongitude.Valid {
		md.GPSLatitude = floatPtr(img.GPSLatitude)
		md.GPSLongitude = floatPtr(img.GPSLongitude)
		md.GPSAltitude = floatPtr(img.GPSAltitude)
	}

	if img.AuthorID.Valid {
		author, err := s.database.FindAuthorByID(img.AuthorID.String)
		if err != nil {
			return md, fmt.Errorf("finding author: %w", err)
		}
		if author != nil {
			md.Author = &author.Name
		}
	}

	if img.CameraID.Valid {
		cam, err := s.database.FindCameraByID(img.CameraID.String)
		if err != nil {
			return md, fmt.Errorf("finding camera: %w", err)
		}
		if cam != nil {
			md.CameraMake = stringPtr(cam.Make)
			md.CameraModel = stringPtr(cam.Model)
			md.CameraSerial = stringPtr(cam.Serial)
		}
	}

	names, err := s.imageTagNames(img.ID)
	if err != nil {
		return md, err
	}
	md.Tags = names
	if md.Tags == nil {
		md.Tags = []string{}
	}
	return md, nil
}
