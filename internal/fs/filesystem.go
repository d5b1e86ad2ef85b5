package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"photocat/internal/catalog"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that hides entries
// matching ignorePatterns, plus those listed in each directory's ignore file.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*catalog.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return catalog.NewPath(absPath, info.IsDir(), info), nil
}

// ListDir returns the entries of a directory sorted by name. Symlinks and
// other special files are reported as neither file nor directory.
func (m *OSFilesystemManager) ListDir(path string) ([]catalog.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	local, err := ParseIgnoreFile(filepath.Join(path, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	matcher := m.ignore.With(local)

	result := make([]catalog.DirEntry, 0, len(entries))
	for _, e := range entries {
		if matcher.Match(e.Name(), e.IsDir()) {
			continue
		}
		result = append(result, catalog.DirEntry{
			Name:   e.Name(),
			IsFile: e.Type().IsRegular(),
			IsDir:  e.IsDir(),
		})
	}
	return result, nil
}

// Rename moves src to dst and refuses to replace an existing dst.
func (m *OSFilesystemManager) Rename(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("renaming %s: %w: %s", src, catalog.ErrFileExists, dst)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking rename target: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("renaming %s: %w", src, err)
	}
	return nil
}

// MkdirAll creates a directory and any missing parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements catalog.FilesystemManager
var _ catalog.FilesystemManager = (*OSFilesystemManager)(nil)
