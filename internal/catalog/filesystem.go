package catalog

import (
	"errors"
	"io/fs"
)

// ErrFileExists is returned by FilesystemManager.Rename when the target exists.
var ErrFileExists = errors.New("target file already exists")

// DirEntry is one name inside a listed directory.
type DirEntry struct {
	Name   string
	IsFile bool
	IsDir  bool
}

// Path is a validated absolute filesystem path.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path. It is meant for FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, isDir: isDir, info: info}
}

// String returns the absolute path as a string.
func (p *Path) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the file info cached when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// FilesystemManager abstracts the library's directory tree.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and checks that it is a regular file or directory.
	Resolve(rawPath string) (*Path, error)

	// ListDir returns the entries of a directory, minus ignored names.
	ListDir(path string) ([]DirEntry, error)

	// Rename moves src to dst. It never replaces an existing dst and
	// returns an error wrapping ErrFileExists instead.
	Rename(src, dst string) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error
}
