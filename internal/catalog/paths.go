package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"photocat/internal/model"
)

// maxDirectoryDepth bounds parent-chain walks.
const maxDirectoryDepth = 256

// AddRoot registers a library root. The path must be a directory that is
// neither inside nor above an existing root. Adding an existing root is a no-op.
func (s *Service) AddRoot(path *Path) (*model.Directory, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}

	roots, err := s.database.FindRootDirectories()
	if err != nil {
		return nil, fmt.Errorf("listing roots: %w", err)
	}
	for _, r := range roots {
		if r.Name == path.String() {
			return r, nil
		}
		if isWithin(path.String(), r.Name) || isWithin(r.Name, path.String()) {
			return nil, fmt.Errorf("%s overlaps existing root %s", path.String(), r.Name)
		}
	}

	dir := &model.Directory{Name: path.String()}
	if err := s.database.CreateDirectory(dir); err != nil {
		return nil, fmt.Errorf("creating root: %w", err)
	}

	s.logger.Info("root added", "path", path.String())
	return dir, nil
}

// ListRoots returns every library root.
func (s *Service) ListRoots() ([]*model.Directory, error) {
	roots, err := s.database.FindRootDirectories()
	if err != nil {
		return nil, fmt.Errorf("listing roots: %w", err)
	}
	return roots, nil
}

// RemoveRoot removes a root and everything cataloged below it. Files on
// disk are not touched.
func (s *Service) RemoveRoot(absPath string) error {
	root, err := s.database.FindRootDirectoryByPath(absPath)
	if err != nil {
		return fmt.Errorf("finding root: %w", err)
	}
	if root == nil {
		return fmt.Errorf("not a library root: %s", absPath)
	}
	if err := s.database.DeleteDirectory(root.ID); err != nil {
		return fmt.Errorf("removing root: %w", err)
	}
	s.logger.Info("root removed", "path", absPath)
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

// DirectoryForPath returns the cataloged directory at absPath, or nil when
// the path is not cataloged. The root whose path is the longest prefix of
// absPath is used as the starting point.
func (s *Service) DirectoryForPath(absPath string) (*model.Directory, error) {
	absPath = filepath.Clean(absPath)

	roots, err := s.database.FindRootDirectories()
	if err != nil {
		return nil, fmt.Errorf("listing roots: %w", err)
	}

	var root *model.Directory
	for _, r := range roots {
		if isWithin(absPath, r.Name) && (root == nil || len(r.Name) > len(root.Name)) {
			root = r
		}
	}
	if root == nil {
		return nil, nil
	}

	rel, err := filepath.Rel(root.Name, absPath)
	if err != nil {
		return nil, fmt.Errorf("calculating relative path: %w", err)
	}
	if rel == "." {
		return root, nil
	}

	dir := root
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		children, err := s.database.FindChildDirectories(dir.ID)
		if err != nil {
			return nil, fmt.Errorf("listing subdirectories: %w", err)
		}
		var next *model.Directory
		for _, c := range children {
			if c.Name == segment {
				next = c
				break
			}
		}
		if next == nil {
			return nil, nil
		}
		dir = next
	}
	return dir, nil
}

// requireDirectory is DirectoryForPath with a not-cataloged error.
func (s *Service) requireDirectory(path *Path) (*model.Directory, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}
	dir, err := s.DirectoryForPath(path.String())
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, fmt.Errorf("directory is not cataloged: %s", path.String())
	}
	return dir, nil
}

// ImageForPath returns the image cataloged at absPath, or nil.
func (s *Service) ImageForPath(absPath string) (*model.Image, error) {
	dir, err := s.DirectoryForPath(filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, nil
	}
	img, err := s.database.FindImageByName(dir.ID, filepath.Base(absPath))
	if err != nil {
		return nil, fmt.Errorf("finding image: %w", err)
	}
	return img, nil
}

// AbsolutePath joins the segments of dir and its ancestors.
func (s *Service) AbsolutePath(dir *model.Directory) (string, error) {
	segments := []string{dir.Name}
	current := dir
	for depth := 0; current.ParentID.Valid; depth++ {
		if depth >= maxDirectoryDepth {
			return "", fmt.Errorf("directory %s is nested too deeply", dir.ID)
		}
		parent, err := s.database.FindDirectoryByID(current.ParentID.String)
		if err != nil {
			return "", fmt.Errorf("finding parent directory: %w", err)
		}
		if parent == nil {
			return "", fmt.Errorf("parent directory %s not found", current.ParentID.String)
		}
		segments = append(segments, parent.Name)
		current = parent
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return filepath.Join(segments...), nil
}

// rootOf returns the library root containing dir.
func (s *Service) rootOf(dir *model.Directory) (*model.Directory, error) {
	current := dir
	for depth := 0; current.ParentID.Valid; depth++ {
		if depth >= maxDirectoryDepth {
			return nil, fmt.Errorf("directory %s is nested too deeply", dir.ID)
		}
		parent, err := s.database.FindDirectoryByID(current.ParentID.String)
		if err != nil {
			return nil, fmt.Errorf("finding parent directory: %w", err)
		}
		if parent == nil {
			return nil, fmt.Errorf("parent directory %s not found", current.ParentID.String)
		}
		current = parent
	}
	return current, nil
}

// imagePath returns the absolute path of an image file.
func (s *Service) imagePath(img *model.Image) (string, error) {
	dir, err := s.database.FindDirectoryByID(img.DirectoryID)
	if err != nil {
		return "", fmt.Errorf("finding directory: %w", err)
	}
	if dir == nil {
		return "", fmt.Errorf("directory %s not found", img.DirectoryID)
	}
	abs, err := s.AbsolutePath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, img.Filename), nil
}
