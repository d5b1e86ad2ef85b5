package catalog

import (
	"database/sql"
	"fmt"

	"photocat/internal/camera"
	"photocat/internal/model"
)

// CameraSpec describes a camera profile to register. Empty Make, Model or
// Serial are wildcards.
type CameraSpec struct {
	Make            string
	Model           string
	Serial          string
	Key             string
	FileNumberStart *int
	FileNumberEnd   *int
}

// AddCamera registers a camera profile at the end of the registry.
func (s *Service) AddCamera(spec CameraSpec) (*model.Camera, error) {
	if spec.Key == "" {
		return nil, fmt.Errorf("camera key is required")
	}
	if (spec.FileNumberStart == nil) != (spec.FileNumberEnd == nil) {
		return nil, fmt.Errorf("file number window needs both start and end")
	}
	if spec.FileNumberStart != nil && (*spec.FileNumberStart < 0 || *spec.FileNumberStart >= *spec.FileNumberEnd) {
		return nil, fmt.Errorf("invalid file number window [%d, %d)", *spec.FileNumberStart, *spec.FileNumberEnd)
	}

	existing, err := s.database.FindCameraByKey(spec.Key)
	if err != nil {
		return nil, fmt.Errorf("checking for existing camera: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("camera key already registered: %s", spec.Key)
	}

	cam := &model.Camera{
		Make:   optionalString(spec.Make),
		Model:  optionalString(spec.Model),
		Serial: optionalString(spec.Serial),
		Key:    spec.Key,
	}
	if spec.FileNumberStart != nil {
		cam.FileNumberStart = sql.NullInt64{Int64: int64(*spec.FileNumberStart), Valid: true}
		cam.FileNumberEnd = sql.NullInt64{Int64: int64(*spec.FileNumberEnd), Valid: true}
	}
	if err := s.database.CreateCamera(cam); err != nil {
		return nil, err
	}

	s.logger.Info("camera added", "key", cam.Key)
	return cam, s.ReloadCameras()
}

// SeedCameras registers every spec whose key is not known yet.
func (s *Service) SeedCameras(specs []CameraSpec) error {
	for _, spec := range specs {
		existing, err := s.database.FindCameraByKey(spec.Key)
		if err != nil {
			return fmt.Errorf("checking for existing camera: %w", err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.AddCamera(spec); err != nil {
			return err
		}
	}
	return nil
}

// ListCameras returns the registry in match order.
func (s *Service) ListCameras() ([]*model.Camera, error) {
	cams, err := s.database.ListCameras()
	if err != nil {
		return nil, fmt.Errorf("listing cameras: %w", err)
	}
	return cams, nil
}

// ReloadCameras refreshes the matcher from the database.
func (s *Service) ReloadCameras() error {
	cams, err := s.database.ListCameras()
	if err != nil {
		return fmt.Errorf("loading cameras: %w", err)
	}
	profiles := make([]*camera.Profile, len(cams))
	for i, c := range cams {
		profiles[i] = cameraProfile(c)
	}
	s.cameras.Reload(profiles)
	return nil
}

func cameraProfile(c *model.Camera) *camera.Profile {
	p := &camera.Profile{
		ID:     c.ID,
		Make:   stringPtr(c.Make),
		Model:  stringPtr(c.Model),
		Serial: stringPtr(c.Serial),
		Key:    c.Key,
	}
	if c.FileNumberStart.Valid && c.FileNumberEnd.Valid {
		start, end := int(c.FileNumberStart.Int64), int(c.FileNumberEnd.Int64)
		p.FileNumberStart, p.FileNumberEnd = &start, &end
	}
	return p
}

// AddAuthor registers an author, returning the existing row for a known name.
func (s *Service) AddAuthor(name string) (*model.Author, error) {
	return s.findOrCreateAuthor(name)
}

// ListAuthors returns every author ordered by name.
func (s *Service) ListAuthors() ([]*model.Author, error) {
	authors, err := s.database.ListAuthors()
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	return authors, nil
}

func (s *Service) findOrCreateAuthor(name string) (*model.Author, error) {
	if name == "" {
		return nil, fmt.Errorf("author name is required")
	}
	author, err := s.database.FindAuthorByName(name)
	if err != nil {
		return nil, fmt.Errorf("finding author: %w", err)
	}
	if author != nil {
		return author, nil
	}
	author = &model.Author{Name: name}
	if err := s.database.CreateAuthor(author); err != nil {
		return nil, err
	}
	s.logger.Info("author added", "name", name)
	return author, nil
}

func optionalString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
